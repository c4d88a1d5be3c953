package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/equity/renderer"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display the present-day quote of tickers" }
func (*quoteCmd) Usage() string {
	return `dash quote <ticker>...

  Asks the configured spot sources for the latest quote of each ticker, and
  displays it along with the latest stored close.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker is required")
		return subcommands.ExitUsageError
	}
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	var b strings.Builder
	fmt.Fprintln(&b, "| Ticker | Quote | As Of | Latest Close |")
	fmt.Fprintln(&b, "|:---|---:|:---|---:|")
	for _, arg := range f.Args() {
		ticker := a.engine.Normalize(arg)
		quote, asOf := "-", "-"
		if a.spot != nil {
			qctx, cancel := context.WithTimeout(ctx, a.cfg.Spot.Timeout)
			s, err := a.spot.Snapshot(qctx, ticker)
			cancel()
			switch {
			case err != nil:
				a.log.Warn("quote unavailable", zap.String("ticker", ticker), zap.Error(err))
			case s != nil:
				quote = renderer.Money(s.Price, a.cfg.Currency)
				if !s.AsOf.IsZero() {
					asOf = s.AsOf.Format("2006-01-02 15:04")
				}
			}
		}
		latest := "-"
		if p, ok, err := a.store.LatestClose(ctx, ticker); err != nil {
			a.log.Warn("latest close unavailable", zap.String("ticker", ticker), zap.Error(err))
		} else if ok {
			latest = renderer.Money(p, a.cfg.Currency)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", ticker, quote, asOf, latest)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
