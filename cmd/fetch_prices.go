package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
	"github.com/etnz/equity/eodhd"
	"github.com/etnz/equity/market"
)

type fetchPricesCmd struct {
	from string
	to   string
}

func (*fetchPricesCmd) Name() string     { return "fetch-prices" }
func (*fetchPricesCmd) Synopsis() string { return "download daily closes into the price store" }
func (*fetchPricesCmd) Usage() string {
	return `dash fetch-prices [-from <date>] [-to <date>] [<ticker>...]

  Downloads daily closes from EODHD into the configured SQLite store, or the
  market folder. Without tickers, the traded tickers and the benchmark are
  fetched, from a week before the first trade.

  The API key is read from EODHD_API_KEY, in the environment or the .env file.
`
}

func (c *fetchPricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to fetch. Defaults to a week before the first trade.")
	f.StringVar(&c.to, "to", "", "Last day to fetch. Defaults to today.")
}

// tradedTickers returns the normalized traded tickers and the benchmark, and the
// first trade day.
func tradedTickers(a *app, txs []equity.Transaction) ([]string, date.Date) {
	var first date.Date
	tickers := []string{a.engine.Normalize(a.cfg.Benchmark)}
	for _, tx := range txs {
		if !tx.Type.AffectsShares() {
			continue
		}
		if t := a.engine.Normalize(tx.Ticker); !slices.Contains(tickers, t) {
			tickers = append(tickers, t)
		}
		if first.IsZero() || tx.Date.Before(first) {
			first = tx.Date
		}
	}
	slices.Sort(tickers)
	return tickers, first
}

func (c *fetchPricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	tickers, first := tradedTickers(a, txs)
	if f.NArg() > 0 {
		tickers = tickers[:0]
		for _, t := range f.Args() {
			tickers = append(tickers, a.engine.Normalize(t))
		}
	}

	to := a.engine.Today()
	if c.to != "" {
		if to, err = date.Parse(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	from := to.AddYears(-1)
	if !first.IsZero() {
		from = first.Add(-7)
	}
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: %s is after %s\n", from, to)
		return subcommands.ExitUsageError
	}

	client := eodhd.New(a.cfg.EOD.URL, a.cfg.EOD.APIKey, a.cfg.EOD.Exchange, a.log)

	var sink eodhd.Sink
	switch s := a.store.(type) {
	case *market.SQLite:
		sink = s
	case *market.Memory:
		sink = s
	default:
		fmt.Fprintln(os.Stderr, "Error: the price store cannot be written")
		return subcommands.ExitFailure
	}
	counts, err := client.Fetch(ctx, sink, tickers, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching prices: %v\n", err)
		return subcommands.ExitFailure
	}
	if m, ok := a.store.(*market.Memory); ok {
		if err := market.EncodeFolder(a.cfg.Market.Folder, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing market folder: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fetched closes from %s to %s:\n\n", from, to)
	fmt.Fprintln(&b, "| Ticker | Closes |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, t := range tickers {
		fmt.Fprintf(&b, "| %s | %d |\n", t, counts[t])
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
