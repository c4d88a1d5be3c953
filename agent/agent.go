// Package agent explains a portfolio valuation in plain words, using a Gemini
// model that can query the valuation through function calls.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is an interactive session with an analyst.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	analyst *Expert
}

// New creates a new Agent reading questions from r and writing answers to w.
func New(w io.Writer, r io.Reader, analyst *Expert) *Agent {
	return &Agent{w: w, r: bufio.NewReader(r), analyst: analyst}
}

const prompt = "explain> "

// Run starts the interactive session. prompts are asked first, then questions
// are read until "bye" or the end of input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.analyst.chat == nil {
		if err := a.analyst.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Ask about your portfolio valuation. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		answer, err := a.analyst.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}

// Explain asks a single question and returns the answer.
func Explain(ctx context.Context, client *genai.Client, analyst *Expert, question string) (string, error) {
	if err := analyst.Start(ctx, client); err != nil {
		return "", err
	}
	return analyst.Ask(ctx, &genai.Part{Text: question})
}
