package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/equity"
	"github.com/etnz/equity/renderer"
)

type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the dashboard as markdown, HTML or a workbook" }
func (*exportCmd) Usage() string {
	return `dash export [-f md|html|xlsx] [-o <file>]

  Writes the dashboard to a file, or to the standard output without -o.
  The xlsx workbook has one sheet per section: series, holdings, allocation,
  returns and warnings.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "md", "Output format: md, html or xlsx")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output.")
}

func (c *exportCmd) write(w io.Writer, m *equity.LiveMetrics, currency string) error {
	md := renderer.RenderDashboard(m, renderer.Options{Currency: currency})
	switch c.format {
	case "md":
		_, err := io.WriteString(w, md)
		return err
	case "html":
		page, err := renderer.Page("Portfolio", md)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	case "xlsx":
		return renderer.WriteWorkbook(w, m)
	default:
		return fmt.Errorf("unknown format %q", c.format)
	}
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.format {
	case "md", "html", "xlsx":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()

	m, err := a.liveMetrics(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", a.cfg.Ledger, err)
		return subcommands.ExitFailure
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		out, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		w = out
	}
	if err := c.write(w, m, a.cfg.Currency); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
