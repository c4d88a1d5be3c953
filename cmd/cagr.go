package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/equity"
	"github.com/etnz/equity/renderer"
)

type cagrCmd struct {
	years int
}

func (*cagrCmd) Name() string     { return "cagr" }
func (*cagrCmd) Synopsis() string { return "display the compound annual growth rate" }
func (*cagrCmd) Usage() string {
	return `dash cagr [-y <years>]

  Displays the compound annual growth rate of the portfolio value over the
  last 1, 3, 5 and 10 years, or over the window given by -y.
  A window the series does not cover is shown as n/a.
`
}

func (c *cagrCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "y", 0, "Window length in years. Defaults to the fixed windows.")
}

func (c *cagrCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.years < 0 {
		fmt.Fprintln(os.Stderr, "Error: -y must be positive")
		return subcommands.ExitUsageError
	}
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	txs, err := a.transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
		return subcommands.ExitFailure
	}
	series := a.engine.Build(ctx, txs).Series

	cagrs := equity.FixedWindowCAGRs(series, a.period)
	if c.years > 0 {
		cagrs = []equity.CAGR{equity.WindowCAGR(series, c.years, a.period)}
	}

	var b strings.Builder
	fmt.Fprintln(&b, "# Compound Annual Growth Rate")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Window | From | To | CAGR |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|")
	for _, r := range cagrs {
		rate := "n/a"
		if r.CAGRPct != nil {
			rate = renderer.Percent(*r.CAGRPct)
		}
		fmt.Fprintf(&b, "| %dY | %s | %s | %s |\n", r.Years, orDash(r.StartLabel), orDash(r.EndLabel), rate)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
