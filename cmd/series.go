package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/renderer"
)

// seriesCmd prints the daily value series of the ledger.
type seriesCmd struct {
	period string
	json   bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the value of the portfolio over time" }
func (*seriesCmd) Usage() string {
	return `dash series [-p <period>] [-json]

  Values the portfolio at the close of every trading day since the first
  trade, and displays the value at the end of each period.
  Days priced from a present-day quote and days without a price are listed
  after the table.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Period of the table: daily, weekly, monthly, quarterly or yearly. Defaults to the configured period.")
	f.BoolVar(&c.json, "json", false, "Print the daily series and its status as JSON")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	period := a.period
	if c.period != "" {
		p, err := date.ParsePeriod(c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
			return subcommands.ExitUsageError
		}
		period = p
	}

	txs, err := a.transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
		return subcommands.ExitFailure
	}
	r := a.engine.Build(ctx, txs)

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding series: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderSeries(r.Series, period, a.cfg.Currency) + "\n" + renderer.RenderStatus(r.Status))
	return subcommands.ExitSuccess
}
