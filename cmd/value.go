package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/renderer"
)

type valueCmd struct {
	date string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "display the value of the portfolio on a day" }
func (*valueCmd) Usage() string {
	return `dash value [-d <date>]

  Displays the value of the portfolio at the close of a day, 0 if the day
  is outside the valued range. Without -d, the latest valued day is used.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day to value, as YYYY-MM-DD")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.date == "" {
		fmt.Println(renderer.Money(a.engine.LatestValue(ctx, txs), a.cfg.Currency))
		return subcommands.ExitSuccess
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Println(renderer.Money(a.engine.ValueOn(ctx, txs, on), a.cfg.Currency))
	return subcommands.ExitSuccess
}
