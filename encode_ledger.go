package equity

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/jsonl"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The ledger is a JSONL file, one transaction per line:
//
//	{"date":"2024-01-02","type":"BUY","ticker":"AAPL","quantity":10,"price":185.64,"fees":1}

type jtransaction struct {
	Date     date.Date       `json:"date"`
	Type     string          `json:"type"`
	Ticker   string          `json:"ticker,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
	Memo     string          `json:"memo,omitempty"`
}

// DecodeLedger reads and validates transactions from a JSONL stream.
// filename is for error message only.
func DecodeLedger(filename string, r io.Reader) ([]Transaction, error) {
	lines, err := jsonl.Scan(filename, r)
	if err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(lines))
	for _, l := range lines {
		var jt jtransaction
		if err := json.Unmarshal([]byte(l.Text), &jt); err != nil {
			return nil, fmt.Errorf("parse error %v: %w", l, err)
		}
		typ, err := ParseTxType(jt.Type)
		if err != nil {
			return nil, fmt.Errorf("parse error %v: %w", l, err)
		}
		tx := Transaction{
			Date:     jt.Date,
			Ticker:   NormalizeTicker(jt.Ticker, nil),
			Type:     typ,
			Quantity: jt.Quantity,
			Price:    jt.Price,
			Fees:     jt.Fees,
			Memo:     jt.Memo,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction %v: %w", l, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DecodeLedgerFile reads a ledger file. A missing file is an empty ledger.
func DecodeLedgerFile(name string) ([]Transaction, error) {
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %q: %w", name, err)
	}
	defer f.Close()
	return DecodeLedger(name, f)
}

// EncodeLedger writes transactions in date order, with a stable field order.
func EncodeLedger(w io.Writer, txs []Transaction) error {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, tx := range sorted {
		var o jsonl.Object
		o.Append("date", tx.Date).
			Append("type", tx.Type).
			Optional("ticker", tx.Ticker).
			Optional("quantity", tx.Quantity).
			Optional("price", tx.Price).
			Optional("fees", tx.Fees).
			Optional("memo", tx.Memo)
		if err := jsonl.Write(w, &o); err != nil {
			return fmt.Errorf("cannot encode %v: %w", tx, err)
		}
	}
	return nil
}
