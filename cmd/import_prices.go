package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity/config"
	"github.com/etnz/equity/market"
)

type importPricesCmd struct {
	from string
	to   string
}

func (*importPricesCmd) Name() string     { return "import-prices" }
func (*importPricesCmd) Synopsis() string { return "copy a market folder into a SQLite price store" }
func (*importPricesCmd) Usage() string {
	return `dash import-prices [-from <folder>] [-to <file.db>]

  Reads the yearly JSONL files of a market folder and writes every close into
  a SQLite price store. Existing closes of the same day are replaced.
`
}

func (c *importPricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Market folder. Defaults to the configured market folder.")
	f.StringVar(&c.to, "to", "", "SQLite file. Defaults to the configured market sqlite file.")
}

func (c *importPricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.from == "" {
		c.from = cfg.Market.Folder
	}
	if c.to == "" {
		c.to = cfg.Market.SQLite
	}
	if c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: both a market folder and a SQLite file are required")
		return subcommands.ExitUsageError
	}

	m, err := market.DecodeFolder(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading market folder %q: %v\n", c.from, err)
		return subcommands.ExitFailure
	}
	s, err := market.OpenSQLite(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.to, err)
		return subcommands.ExitFailure
	}
	defer s.Close()
	if err := s.Import(ctx, m); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d tickers from %s into %s\n", len(m.Tickers()), c.from, c.to)
	return subcommands.ExitSuccess
}
