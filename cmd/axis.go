package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/equity/axis"
)

type axisCmd struct {
	metric string
	source string
}

func (*axisCmd) Name() string     { return "axis" }
func (*axisCmd) Synopsis() string { return "display the chart axis of a series" }
func (*axisCmd) Usage() string {
	return `dash axis [-m <metric>] [-s series|returns|holdings]

  Displays the five ticks of the value axis a chart of the source would use,
  formatted for the metric kind: currency, eps, shares, percent or ratio.
`
}

func (c *axisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metric, "m", "currency", "Metric kind of the values")
	f.StringVar(&c.source, "s", "series", "Values to scale: series, returns or holdings")
}

func (c *axisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := axis.ParseMetricKind(c.metric)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.source != "series" && c.source != "returns" && c.source != "holdings" {
		fmt.Fprintf(os.Stderr, "Error: unknown source %q\n", c.source)
		return subcommands.ExitUsageError
	}

	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	var values []float64
	if c.source == "holdings" {
		m, err := a.liveMetrics(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
			return subcommands.ExitFailure
		}
		for _, h := range m.Holdings {
			values = append(values, h.MarketValue)
		}
	} else {
		txs, err := a.transactions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
			return subcommands.ExitFailure
		}
		for _, p := range a.engine.Build(ctx, txs).Series {
			switch {
			case c.source == "series":
				values = append(values, p.Value)
			case p.CumulativeReturnPct != nil:
				values = append(values, *p.CumulativeReturnPct)
			}
		}
	}

	s := axis.ComputeYAxisScale(values, kind)
	var b strings.Builder
	fmt.Fprintf(&b, "# Axis of %s (%s)\n\n", c.source, kind)
	fmt.Fprintln(&b, "| Tick | Label |")
	fmt.Fprintln(&b, "|---:|---:|")
	for i := len(s.Ticks) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "| %g | %s |\n", s.Ticks[i], s.Labels[i])
	}
	fmt.Fprintf(&b, "\nStep %s over %d values.\n", s.Format(s.Step), len(values))
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
