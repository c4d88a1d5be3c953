package equity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownSector is the sector of tickers missing from the sector map.
const UnknownSector = "Unknown"

// Position is a current holding with its average cost basis.
type Position struct {
	Ticker    string          `json:"ticker"`
	Shares    decimal.Decimal `json:"shares"`
	CostBasis decimal.Decimal `json:"costBasis"` // total cost of the shares held
	Sector    string          `json:"sector"`
}

// AverageCost is the cost of one share.
func (p Position) AverageCost() decimal.Decimal {
	if p.Shares.IsZero() {
		return decimal.Zero
	}
	return p.CostBasis.Div(p.Shares)
}

// PositionsFromTransactions replays trades into current positions using the
// average cost method: a sale removes cost in proportion of the shares sold.
// Fees of buys are part of the cost. Oversells clamp the position to zero.
// Closed positions are omitted.
func PositionsFromTransactions(txs []Transaction, normalize func(string) string, sectors map[string]string) []Position {
	sorted := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type.AffectsShares() {
			tx.Ticker = normalize(tx.Ticker)
			sorted = append(sorted, tx)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	type acc struct{ qty, cost decimal.Decimal }
	book := make(map[string]*acc)
	for _, tx := range sorted {
		a, ok := book[tx.Ticker]
		if !ok {
			a = new(acc)
			book[tx.Ticker] = a
		}
		switch tx.Type {
		case Buy:
			a.qty = a.qty.Add(tx.Quantity)
			a.cost = a.cost.Add(tx.Amount()).Add(tx.Fees)
		case Sell:
			if tx.Quantity.GreaterThanOrEqual(a.qty) {
				a.qty, a.cost = decimal.Zero, decimal.Zero
				continue
			}
			costOfSale := a.cost.Mul(tx.Quantity).Div(a.qty)
			a.cost = a.cost.Sub(costOfSale)
			a.qty = a.qty.Sub(tx.Quantity)
		}
	}

	res := make([]Position, 0, len(book))
	for t, a := range book {
		if !a.qty.IsPositive() {
			continue
		}
		sector, ok := sectors[t]
		if !ok || sector == "" {
			sector = UnknownSector
		}
		res = append(res, Position{Ticker: t, Shares: a.qty, CostBasis: a.cost, Sector: sector})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res
}
