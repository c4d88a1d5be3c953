package renderer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/etnz/equity"
)

// Sheet names of the workbook.
const (
	SeriesSheet     = "Series"
	HoldingsSheet   = "Holdings"
	AllocationSheet = "Allocation"
	ReturnsSheet    = "Returns"
	WarningsSheet   = "Warnings"
)

// Workbook builds a spreadsheet with one sheet per dashboard section.
// The caller must Close the file.
func Workbook(m *equity.LiveMetrics) (*excelize.File, error) {
	f := excelize.NewFile()
	sheets := []struct {
		name string
		rows [][]any
	}{
		{SeriesSheet, seriesRows(m.Series)},
		{HoldingsSheet, holdingRows(m.Holdings)},
		{AllocationSheet, allocationRows(m.Allocation)},
		{ReturnsSheet, returnRows(m)},
		{WarningsSheet, warningRows(m.Status.Warnings)},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("cannot rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot create sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("cannot write %s row %d: %w", s.name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook writes the xlsx workbook of m to w.
func WriteWorkbook(w io.Writer, m *equity.LiveMetrics) error {
	f, err := Workbook(m)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	return nil
}

func seriesRows(series []equity.Point) [][]any {
	rows := [][]any{{"Date", "Value", "Cumulative Return %"}}
	for _, p := range series {
		var cumulative any
		if p.CumulativeReturnPct != nil {
			cumulative = *p.CumulativeReturnPct
		}
		rows = append(rows, []any{p.Date.String(), p.Value, cumulative})
	}
	return rows
}

func holdingRows(holdings []equity.Holding) [][]any {
	rows := [][]any{{"Ticker", "Sector", "Shares", "Price", "Source", "Value", "Cost", "P/L", "Return %", "Weight", "Contribution %"}}
	for _, h := range holdings {
		rows = append(rows, []any{h.Ticker, h.Sector, h.Shares, h.Price, string(h.Source), h.MarketValue, h.CostBasis, h.UnrealizedPL, h.ReturnPct, h.Weight, h.ContributionPct})
	}
	return rows
}

func allocationRows(allocation []equity.Allocation) [][]any {
	rows := [][]any{{"Sector", "Value", "Weight"}}
	for _, a := range allocation {
		rows = append(rows, []any{a.Sector, a.Value, a.Weight})
	}
	return rows
}

func returnRows(m *equity.LiveMetrics) [][]any {
	rows := [][]any{
		{"Period", "Return %", "Start", "End"},
		{"YTD", m.YTDReturnPct},
		{"All time", m.AllTimeReturnPct},
	}
	for _, c := range m.CAGR {
		var pct any
		if c.CAGRPct != nil {
			pct = *c.CAGRPct
		}
		rows = append(rows, []any{fmt.Sprintf("%dy CAGR", c.Years), pct, c.StartLabel, c.EndLabel})
	}
	return rows
}

func warningRows(warnings []equity.Warning) [][]any {
	rows := [][]any{{"Kind", "Ticker", "Date", "Message"}}
	for _, w := range warnings {
		day := ""
		if !w.Date.IsZero() {
			day = w.Date.String()
		}
		rows = append(rows, []any{string(w.Kind), w.Ticker, day, w.Message})
	}
	return rows
}
