package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/jsonl"
)

// Market data persists in a folder as one JSONL file per year, each line holding
// the closes of a day:
//
//	{"on":"2024-01-02","AAPL":185.64,"SPY":472.65}
//
// The format stays human readable and git friendly.

const attrOn = "on"
const filesGlob = "[0-9][0-9][0-9][0-9].jsonl"

// decodeLine decodes a single line into m.
func decodeLine(m *Memory, l jsonl.Line) error {
	jobj := make(map[string]any)
	if err := json.Unmarshal([]byte(l.Text), &jobj); err != nil {
		return fmt.Errorf("parse error %v: not a correct json: %w", l, err)
	}

	jvalue, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("parse error %v: missing the property %q with a date", l, attrOn)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return fmt.Errorf("parse error %v: property %q must be of type 'string'", l, attrOn)
	}
	on, err := date.Parse(jstring)
	if err != nil {
		return fmt.Errorf("parse error %v: property %q must be a valid date: %w", l, attrOn, err)
	}

	// every other attribute is a (ticker, close) pair.
	for ticker, price := range jobj {
		if ticker == attrOn {
			continue
		}
		p, ok := price.(float64)
		if !ok {
			return fmt.Errorf("parse error %v: property %q must be of type 'number'", l, ticker)
		}
		m.Append(ticker, on, p)
	}
	return nil
}

// DecodeFolder reads all yearly files of a folder into a new Memory store.
// A missing folder is an empty store.
func DecodeFolder(folder string) (*Memory, error) {
	m := NewMemory()
	filenames, err := filepath.Glob(filepath.Join(folder, filesGlob))
	if err != nil {
		return nil, fmt.Errorf("load error: cannot scan folder %q for market data files: %w", folder, err)
	}
	lines, err := jsonl.ReadFiles(filenames...)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	for _, line := range lines {
		if err := decodeLine(m, line); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// EncodeFolder writes m into folder, one file per year. Yearly files left
// without data are removed.
func EncodeFolder(folder string, m *Memory) error {
	tickers := m.Tickers()
	histories := make([]map[date.Date]float64, len(tickers))
	days := make([][]date.Date, len(tickers))
	for i, t := range tickers {
		histories[i] = make(map[date.Date]float64)
		for _, c := range m.History(t) {
			histories[i][c.Date] = c.Close
			days[i] = append(days[i], c.Date)
		}
	}

	files := make(map[string]*bytes.Buffer)
	for day := range date.Union(days...) {
		var o jsonl.Object
		o.Append(attrOn, day.String())
		for i, t := range tickers {
			// json does not support NaN.
			if v, ok := histories[i][day]; ok && !math.IsNaN(v) {
				o.Append(t, v)
			}
		}
		name := filepath.Join(folder, fmt.Sprintf("%d.jsonl", day.Year()))
		buf, ok := files[name]
		if !ok {
			buf = new(bytes.Buffer)
			files[name] = buf
		}
		if err := jsonl.Write(buf, &o); err != nil {
			return fmt.Errorf("persist error: cannot encode %s: %w", day, err)
		}
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("persist error: cannot create folder %q: %w", folder, err)
	}
	for name, buf := range files {
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("persist error: cannot write file %q: %w", name, err)
		}
	}

	existing, err := filepath.Glob(filepath.Join(folder, filesGlob))
	if err != nil {
		return fmt.Errorf("persist error: cannot scan folder %q: %w", folder, err)
	}
	for _, name := range existing {
		if _, ok := files[name]; ok {
			continue
		}
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("persist error: cannot delete %q: %w", name, err)
		}
	}
	return nil
}
