package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/etnz/equity/agent"
)

type explainCmd struct {
	interactive bool
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "explain the portfolio performance with Gemini" }
func (*explainCmd) Usage() string {
	return `dash explain [-i] [<question>]

  Asks a Gemini model to explain the valuation of the portfolio. The model
  queries the metrics, series status, CAGR and benchmark through tools.
  With -i, starts an interactive session.

  The API key is read from GEMINI_API_KEY, in the environment or the .env file.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Start an interactive session")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.cfg.Explain.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	analyst := agent.NewAnalyst(a.cfg.Explain.Model, a.agg, txs)
	question := strings.Join(f.Args(), " ")

	if c.interactive {
		if err := agent.New(os.Stdout, os.Stdin, analyst).Run(ctx, client, question); err != nil {
			fmt.Fprintln(os.Stderr, "Agent failed:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if question == "" {
		question = agent.DefaultQuestion
	}
	answer, err := agent.Explain(ctx, client, analyst, question)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(answer)
	return subcommands.ExitSuccess
}
