package equity

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const ledger = `{"date":"2024-01-02","type":"BUY","ticker":"aapl","quantity":10,"price":185.64,"fees":1}

{"date":"2024-01-03","type":"deposit","quantity":1000}
{"date":"2024-01-05","type":"SELL","ticker":"AAPL","quantity":"2.5","price":181.18,"memo":"rebalance"}
`

func TestDecodeLedger(t *testing.T) {
	txs, err := DecodeLedger("ledger.jsonl", strings.NewReader(ledger))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if got, want := len(txs), 3; got != want {
		t.Fatalf("DecodeLedger() returned %d transactions, want %d", got, want)
	}
	if got, want := txs[0].Ticker, "AAPL"; got != want {
		t.Errorf("Ticker = %q, want %q", got, want)
	}
	if got, want := txs[1].Type, CashIn; got != want {
		t.Errorf("Type = %q, want %q", got, want)
	}
	if got, want := txs[2].Quantity, decimal.RequireFromString("2.5"); !got.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if got, want := txs[2].Memo, "rebalance"; got != want {
		t.Errorf("Memo = %q, want %q", got, want)
	}
}

func TestDecodeLedgerErrors(t *testing.T) {
	testCases := []struct {
		name string
		line string
	}{
		{"not json", `{"date":`},
		{"unknown type", `{"date":"2024-01-02","type":"SWAP","ticker":"AAPL","quantity":1,"price":1}`},
		{"missing price", `{"date":"2024-01-02","type":"BUY","ticker":"AAPL","quantity":1}`},
		{"missing ticker", `{"date":"2024-01-02","type":"SELL","quantity":1,"price":1}`},
		{"invalid date", `{"date":"02/01/2024","type":"BUY","ticker":"AAPL","quantity":1,"price":1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeLedger("ledger.jsonl", strings.NewReader(tc.line)); err == nil {
				t.Errorf("DecodeLedger(%s) error = nil, want an error", tc.line)
			}
		})
	}
}

func TestEncodeLedger(t *testing.T) {
	txs, err := DecodeLedger("ledger.jsonl", strings.NewReader(ledger))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	// reversed input is written in date order.
	txs[0], txs[2] = txs[2], txs[0]

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, txs); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	want := `{"date":"2024-01-02","type":"BUY","ticker":"AAPL","quantity":10,"price":185.64,"fees":1}
{"date":"2024-01-03","type":"CASH_IN","quantity":1000}
{"date":"2024-01-05","type":"SELL","ticker":"AAPL","quantity":2.5,"price":181.18,"memo":"rebalance"}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeLedger() =\n%s\nwant\n%s", got, want)
	}
}
