package equity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/equity/date"
)

// TxType is the kind of a transaction.
type TxType string

const (
	Buy      TxType = "BUY"
	Sell     TxType = "SELL"
	Dividend TxType = "DIVIDEND"
	CashIn   TxType = "CASH_IN"
	CashOut  TxType = "CASH_OUT"
	Split    TxType = "SPLIT"
)

// ParseTxType reads a transaction type, case insensitive. A few broker
// synonyms are accepted.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "BOUGHT":
		return Buy, nil
	case "SELL", "SOLD":
		return Sell, nil
	case "DIVIDEND", "DIV":
		return Dividend, nil
	case "CASH_IN", "DEPOSIT":
		return CashIn, nil
	case "CASH_OUT", "WITHDRAW", "WITHDRAWAL":
		return CashOut, nil
	case "SPLIT":
		return Split, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// AffectsShares reports whether the type changes share counts.
// Only BUY and SELL do, splits are recorded but not replayed.
func (t TxType) AffectsShares() bool { return t == Buy || t == Sell }

// Transaction is an immutable record of one trade or cash event.
type Transaction struct {
	Date     date.Date
	Ticker   string
	Type     TxType
	Quantity decimal.Decimal // unsigned, the sign comes from Type
	Price    decimal.Decimal // per unit, required for BUY and SELL
	Fees     decimal.Decimal
	Memo     string
}

// Amount is the gross value of the trade.
func (t Transaction) Amount() decimal.Decimal { return t.Quantity.Mul(t.Price) }

// Validate checks the transaction is well formed.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("%s %s: missing date", t.Type, t.Ticker)
	}
	switch t.Type {
	case Buy, Sell:
		if t.Ticker == "" {
			return fmt.Errorf("%s on %s: missing ticker", t.Type, t.Date)
		}
		if !t.Quantity.IsPositive() {
			return fmt.Errorf("%s %s on %s: quantity must be positive, got %s", t.Type, t.Ticker, t.Date, t.Quantity)
		}
		if !t.Price.IsPositive() {
			return fmt.Errorf("%s %s on %s: price must be positive, got %s", t.Type, t.Ticker, t.Date, t.Price)
		}
	case Dividend, CashIn, CashOut, Split:
	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("%s %s on %s: fees cannot be negative", t.Type, t.Ticker, t.Date)
	}
	return nil
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s@%s", t.Date, t.Type, t.Ticker, t.Quantity, t.Price)
}

// DefaultAliases maps renamed or differently spelled symbols to the symbol
// used by price sources.
var DefaultAliases = map[string]string{
	"FB":    "META",
	"BRK.B": "BRK-B",
	"BRK/B": "BRK-B",
	"SQ":    "XYZ",
}

// NormalizeTicker trims, upper cases and resolves aliases.
func NormalizeTicker(ticker string, aliases map[string]string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if a, ok := aliases[t]; ok {
		return a
	}
	return t
}

// DefaultFullHistory is the set of tickers with full daily history in the price store.
var DefaultFullHistory = []string{
	"SPY", "QQQ", "VTI", "VOO", "IWM", "DIA",
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B", "JPM", "V",
}
