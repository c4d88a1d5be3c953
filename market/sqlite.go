package market

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/etnz/equity/date"
)

// Schema creates the daily_closes table. Days are stored as ISO strings so
// lexical order is chronological order.
const Schema = `
CREATE TABLE IF NOT EXISTS daily_closes (
	ticker TEXT NOT NULL,
	day    TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (ticker, day)
);
`

// SQLite is a PriceStore backed by a sqlite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open price store %q", path)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create price store schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Put upserts closes of a ticker in a single transaction.
func (s *SQLite) Put(ctx context.Context, ticker string, closes ...Close) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_closes (ticker, day, close) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()
	for _, c := range closes {
		if _, err := stmt.ExecContext(ctx, ticker, c.Date.String(), c.Close); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert %s %s", ticker, c.Date)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Import copies every observation of a Memory store.
func (s *SQLite) Import(ctx context.Context, m *Memory) error {
	for _, t := range m.Tickers() {
		if err := s.Put(ctx, t, m.History(t)...); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) observations(ctx context.Context, ticker string, from, to date.Date) ([]Close, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, close FROM daily_closes WHERE ticker = ? AND day >= ? AND day <= ? ORDER BY day`,
		ticker, from.String(), to.String())
	if err != nil {
		return nil, errors.Wrapf(err, "query closes of %s", ticker)
	}
	defer rows.Close()
	var res []Close
	for rows.Next() {
		var day string
		var c Close
		if err := rows.Scan(&day, &c.Close); err != nil {
			return nil, errors.Wrap(err, "scan close")
		}
		if c.Date, err = date.Parse(day); err != nil {
			return nil, errors.Wrapf(err, "invalid day in store for %s", ticker)
		}
		res = append(res, c)
	}
	return res, errors.Wrap(rows.Err(), "iterate closes")
}

func (s *SQLite) DailyCloses(ctx context.Context, ticker string, from, to date.Date) ([]Close, error) {
	r, err := s.TickerDateRange(ctx, ticker)
	if err != nil || r == nil || from.After(r.To) {
		return nil, err
	}
	obs, err := s.observations(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 || obs[0].Date != from {
		// seed the forward fill with the last close before from.
		var day string
		var v float64
		err := s.db.QueryRowContext(ctx,
			`SELECT day, close FROM daily_closes WHERE ticker = ? AND day < ? ORDER BY day DESC LIMIT 1`,
			ticker, from.String()).Scan(&day, &v)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return nil, errors.Wrapf(err, "query close of %s before %s", ticker, from)
		default:
			obs = append([]Close{{from, v}}, obs...)
		}
	}
	return fill(obs, from, to), nil
}

func (s *SQLite) TickerDateRange(ctx context.Context, ticker string) (*date.Range, error) {
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(day), MAX(day) FROM daily_closes WHERE ticker = ?`, ticker).Scan(&first, &last)
	if err != nil {
		return nil, errors.Wrapf(err, "query range of %s", ticker)
	}
	if !first.Valid || !last.Valid {
		return nil, nil
	}
	var r date.Range
	if r.From, err = date.Parse(first.String); err != nil {
		return nil, errors.Wrap(err, "invalid first day")
	}
	if r.To, err = date.Parse(last.String); err != nil {
		return nil, errors.Wrap(err, "invalid last day")
	}
	return &r, nil
}

func (s *SQLite) BatchLoadDailyCloses(ctx context.Context, tickers []string, from, to date.Date) (map[string][]Close, error) {
	res := make(map[string][]Close, len(tickers))
	for _, t := range tickers {
		obs, err := s.observations(ctx, t, from, to)
		if err != nil {
			return nil, err
		}
		if len(obs) > 0 {
			res[t] = obs
		}
	}
	return res, nil
}

func (s *SQLite) LatestClose(ctx context.Context, ticker string) (float64, bool, error) {
	var v float64
	err := s.db.QueryRowContext(ctx,
		`SELECT close FROM daily_closes WHERE ticker = ? ORDER BY day DESC LIMIT 1`, ticker).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "query latest close of %s", ticker)
	}
	return v, true, nil
}

var _ PriceStore = (*SQLite)(nil)
