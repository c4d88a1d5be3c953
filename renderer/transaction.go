package renderer

import (
	"fmt"

	"github.com/etnz/equity"
)

// Transaction renders a transaction to a sentence.
func Transaction(tx equity.Transaction, currency string) string {
	switch tx.Type {
	case equity.Buy:
		return fmt.Sprintf("Bought %s of %s for %s", tx.Quantity, tx.Ticker, Money(tx.Amount().InexactFloat64(), currency))
	case equity.Sell:
		return fmt.Sprintf("Sold %s of %s for %s", tx.Quantity, tx.Ticker, Money(tx.Amount().InexactFloat64(), currency))
	case equity.Dividend:
		return fmt.Sprintf("Dividend of %s for %s", Money(tx.Amount().InexactFloat64(), currency), tx.Ticker)
	case equity.CashIn:
		return fmt.Sprintf("Deposited %s", Money(tx.Amount().InexactFloat64(), currency))
	case equity.CashOut:
		return fmt.Sprintf("Withdrew %s", Money(tx.Amount().InexactFloat64(), currency))
	case equity.Split:
		return fmt.Sprintf("Split of %s by %s", tx.Ticker, tx.Quantity)
	default:
		return string(tx.Type)
	}
}
