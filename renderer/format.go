package renderer

import (
	"fmt"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats an amount in a currency, rounded to its minor unit.
// Unknown currencies are printed as plain numbers followed by their code.
func Money(amount float64, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// SignedMoney is like Money with an explicit sign. Zero is "-".
func SignedMoney(amount float64, currency string) string {
	s := Money(amount, currency)
	switch {
	case s == Money(0, currency):
		return "-"
	case amount > 0:
		return "+" + s
	default:
		return s
	}
}

// Percent formats a percentage with a sign and two decimals.
func Percent(pct float64) string { return fmt.Sprintf("%+.2f%%", pct) }

func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money":       func(v float64) string { return Money(v, currency) },
		"signedMoney": func(v float64) string { return SignedMoney(v, currency) },
		"pct":         Percent,
		"weight":      func(w float64) string { return fmt.Sprintf("%.1f%%", w*100) },
		"qty":         func(q float64) string { return decimal.NewFromFloat(q).String() },
		"cagr": func(p *float64) string {
			if p == nil {
				return "n/a"
			}
			return Percent(*p)
		},
	}
}
