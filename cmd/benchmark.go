package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity"
	"github.com/etnz/equity/renderer"
)

type benchmarkCmd struct {
	ticker string
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "compare the portfolio with a benchmark ticker" }
func (*benchmarkCmd) Usage() string {
	return `dash benchmark [-t <ticker>]

  Replays every buy and sell of the ledger into the benchmark ticker, at its
  close of the trade day, and compares the all time returns.
`
}

func (c *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Benchmark ticker. Defaults to the configured benchmark.")
}

func (c *benchmarkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	agg := a.agg
	if c.ticker != "" {
		agg = equity.NewAggregator(a.engine, equity.WithBenchmark(c.ticker), equity.WithSectors(a.cfg.Sectors))
	}

	txs, err := a.transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
		return subcommands.ExitFailure
	}
	bm := agg.Benchmark(ctx, txs)
	printMarkdown(renderer.RenderBenchmark(bm, a.cfg.Currency) + "\n" + renderer.RenderStatus(bm.Status))
	return subcommands.ExitSuccess
}
