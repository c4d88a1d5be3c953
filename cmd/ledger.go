package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/equity"
	"github.com/etnz/equity/renderer"
)

type ledgerCmd struct {
	format bool
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "list or format the ledger transactions" }
func (*ledgerCmd) Usage() string {
	return `dash ledger [-fmt]

  Lists the transactions of the ledger in date order.
  With -fmt, rewrites the ledger file sorted by date with a stable field order.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.format, "fmt", false, "Rewrite the ledger file in canonical form")
}

func (c *ledgerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.format {
		var buf bytes.Buffer
		if err := equity.EncodeLedger(&buf, txs); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(a.cfg.Ledger, buf.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing ledger %q: %v\n", a.cfg.Ledger, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Formatted %d transactions in %s\n", len(txs), a.cfg.Ledger)
		return subcommands.ExitSuccess
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	var b strings.Builder
	fmt.Fprintln(&b, "| Date | Transaction | Memo |")
	fmt.Fprintln(&b, "|:---|:---|:---|")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", tx.Date, renderer.Transaction(tx, a.cfg.Currency), tx.Memo)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
