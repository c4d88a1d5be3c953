// Package journal keeps a history of valuation runs in a sqlite database, so
// the dashboard figures of any past day can be reviewed.
package journal

import (
	"context"
	cryptoRand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
)

// Run is the summary of one recorded valuation.
type Run struct {
	ID         string    `json:"id"`
	Created    time.Time `json:"created"`
	AsOf       date.Date `json:"asOf"`
	Hash       string    `json:"hash"`
	TradeCount int       `json:"tradeCount"`
	TotalValue float64   `json:"totalValue"`
	TotalCost  float64   `json:"totalCost"`
	Drift      float64   `json:"drift"`
	Reconciled bool      `json:"reconciled"`
	Warnings   int       `json:"warnings"`
}

// Journal is a sqlite backed run history.
type Journal struct {
	db  *sql.DB
	now func() time.Time

	mu   sync.Mutex
	mono io.Reader
}

// Open opens (or creates) the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %q", path)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create journal schema")
	}
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Journal{
		db:   db,
		now:  time.Now,
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// newID returns a ULID, increasing even within the same millisecond.
func (j *Journal) newID(at time.Time) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), j.mono)
	if err != nil {
		return "", errors.Wrap(err, "new run id")
	}
	return id.String(), nil
}

// Record stores live metrics, their series and warnings, and returns the run ID.
func (j *Journal) Record(ctx context.Context, m *equity.LiveMetrics) (string, error) {
	created := j.now().UTC()
	id, err := j.newID(created)
	if err != nil {
		return "", err
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, as_of, hash, trade_count, total_value, total_cost, drift, reconciled, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, created, m.AsOf.String(), m.Status.Hash, m.Status.TradeCount,
		m.TotalValue, m.TotalCost, m.Drift, m.Reconciled, len(m.Status.Warnings),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	points, err := tx.PrepareContext(ctx, `INSERT INTO points (run_id, day, value) VALUES (?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare points")
	}
	defer points.Close()
	for _, p := range m.Series {
		if _, err := points.ExecContext(ctx, id, p.Date.String(), p.Value); err != nil {
			return "", errors.Wrapf(err, "insert point %s", p.Date)
		}
	}

	warnings, err := tx.PrepareContext(ctx, `INSERT INTO warnings (run_id, kind, ticker, day, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare warnings")
	}
	defer warnings.Close()
	for _, w := range m.Status.Warnings {
		day := ""
		if !w.Date.IsZero() {
			day = w.Date.String()
		}
		if _, err := warnings.ExecContext(ctx, id, string(w.Kind), w.Ticker, day, w.Message); err != nil {
			return "", errors.Wrap(err, "insert warning")
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	return id, nil
}

// Runs returns the latest runs first, at most limit of them (all if limit <= 0).
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, created, as_of, hash, trade_count, total_value, total_cost, drift, reconciled, warnings
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r    Run
			asOf string
		)
		if err := rows.Scan(&r.ID, &r.Created, &asOf, &r.Hash, &r.TradeCount, &r.TotalValue, &r.TotalCost, &r.Drift, &r.Reconciled, &r.Warnings); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if r.AsOf, err = date.Parse(asOf); err != nil {
			return nil, errors.Wrapf(err, "run %s", r.ID)
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "read runs")
}

// Series returns the points of a run.
func (j *Journal) Series(ctx context.Context, runID string) ([]equity.Point, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT day, value FROM points WHERE run_id = ? ORDER BY day`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "query points of %s", runID)
	}
	defer rows.Close()

	var series []equity.Point
	for rows.Next() {
		var (
			day string
			p   equity.Point
		)
		if err := rows.Scan(&day, &p.Value); err != nil {
			return nil, errors.Wrap(err, "scan point")
		}
		if p.Date, err = date.Parse(day); err != nil {
			return nil, errors.Wrapf(err, "point of %s", runID)
		}
		series = append(series, p)
	}
	return series, errors.Wrap(rows.Err(), "read points")
}

// Warnings returns the warnings of a run, in recording order.
func (j *Journal) Warnings(ctx context.Context, runID string) ([]equity.Warning, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT kind, ticker, day, message FROM warnings WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "query warnings of %s", runID)
	}
	defer rows.Close()

	var res []equity.Warning
	for rows.Next() {
		var (
			w         equity.Warning
			kind, day string
		)
		if err := rows.Scan(&kind, &w.Ticker, &day, &w.Message); err != nil {
			return nil, errors.Wrap(err, "scan warning")
		}
		w.Kind = equity.WarningKind(kind)
		if day != "" {
			if w.Date, err = date.Parse(day); err != nil {
				return nil, errors.Wrapf(err, "warning of %s", runID)
			}
		}
		res = append(res, w)
	}
	return res, errors.Wrap(rows.Err(), "read warnings")
}
