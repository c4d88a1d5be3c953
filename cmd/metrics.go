package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity/renderer"
)

type metricsCmd struct {
	json         bool
	record       bool
	skipHoldings bool
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "display the portfolio dashboard" }
func (*metricsCmd) Usage() string {
	return `dash metrics [-json] [-record] [-skip-holdings]

  Displays the live metrics of the portfolio: total value, cost, returns,
  CAGR over fixed windows, allocation by sector and per holding performance.
  With -record, the metrics are saved in the configured journal.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the metrics as JSON")
	f.BoolVar(&c.record, "record", false, "Record the metrics in the journal")
	f.BoolVar(&c.skipHoldings, "skip-holdings", false, "Do not display the holdings table")
}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	if c.record && a.journal == nil {
		fmt.Fprintln(os.Stderr, "Error: -record needs a journal in the configuration")
		return subcommands.ExitUsageError
	}

	m, err := a.liveMetrics(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
		return subcommands.ExitFailure
	}

	if c.record {
		id, err := a.journal.Record(ctx, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording metrics: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Recorded run %s\n", id)
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding metrics: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderDashboard(m, renderer.Options{Currency: a.cfg.Currency, SkipHoldings: c.skipHoldings}))
	return subcommands.ExitSuccess
}
