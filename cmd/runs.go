package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/equity/renderer"
)

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list the metrics recorded in the journal" }
func (*runsCmd) Usage() string {
	return `dash runs [-n <count>] [<run id>]

  Lists the latest recorded runs. With a run id, displays the recorded series
  and warnings of that run.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of runs to list, 0 for all")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()
	if a.journal == nil {
		fmt.Fprintln(os.Stderr, "Error: no journal in the configuration")
		return subcommands.ExitFailure
	}

	var b strings.Builder
	if f.NArg() > 0 {
		id := f.Arg(0)
		series, err := a.journal.Series(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run %s: %v\n", id, err)
			return subcommands.ExitFailure
		}
		warnings, err := a.journal.Warnings(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run %s: %v\n", id, err)
			return subcommands.ExitFailure
		}
		b.WriteString(renderer.RenderSeries(series, a.period, a.cfg.Currency))
		if len(warnings) > 0 {
			fmt.Fprintln(&b, "\n## Warnings")
			fmt.Fprintln(&b)
			for _, w := range warnings {
				fmt.Fprintf(&b, "* %s\n", w)
			}
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	limit := c.limit
	if limit <= 0 {
		limit = -1
	}
	runs, err := a.journal.Runs(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(&b, "| Run | As Of | Value | Drift | Warnings |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, r := range runs {
		drift := "-"
		if r.Reconciled {
			drift = renderer.SignedMoney(r.Drift, a.cfg.Currency)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n", r.ID, r.AsOf, renderer.Money(r.TotalValue, a.cfg.Currency), drift, r.Warnings)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
