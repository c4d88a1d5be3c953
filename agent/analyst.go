package agent

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
	"github.com/etnz/equity/renderer"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultQuestion is asked by a non interactive explanation.
const DefaultQuestion = "Explain how the portfolio performed, what drives the result and how reliable the figures are."

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// NewAnalyst returns an expert able to query the valuation of txs.
func NewAnalyst(model string, agg *equity.Aggregator, txs []equity.Transaction) *Expert {
	if model == "" {
		model = DefaultModel
	}
	lib := Tools(agg, txs)
	return &Expert{
		Name:      "Analyst",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a portfolio analyst. You explain the valuation of the user's stock portfolio.
				Use the tools to get the live metrics, the value series status, the value on a given day,
				the compound annual growth rate and the comparison with the benchmark.

				Always disclose the quality of the figures: prices bridged from a present-day quote,
				days without a price, and a series tail aligned on the live total.
				Answer in markdown, briefly.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Tools returns the functions exposing the valuation of txs.
func Tools(agg *equity.Aggregator, txs []equity.Transaction) []Function {
	currency := "USD"
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Metrics",
				Description: "Metrics returns the live dashboard: total value, returns, CAGR, holdings, allocation and warnings.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown dashboard."},
			},
			Func: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				m := agg.Compute(ctx, nil, txs)
				return success(id, "Metrics", renderer.RenderDashboard(m, renderer.Options{Currency: currency}))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Status",
				Description: "Status tells which tickers were valued from a present-day quote and which days could not be priced.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown summary, empty when every price comes from daily closes."},
			},
			Func: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				r := agg.Engine().Build(ctx, txs)
				out := renderer.RenderStatus(r.Status)
				if out == "" {
					out = "Every value comes from daily closes."
				}
				return success(id, "Status", out)
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "ValueOn",
				Description: "ValueOn returns the portfolio value at the close of a day, or of the last valued day before it.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date": {Type: genai.TypeString, Description: "The day, formatted YYYY-MM-DD. Today is the default."},
					},
				},
				Response: &genai.Schema{Type: genai.TypeString},
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				day, err := parseDate(args, agg.Engine().Today())
				if err != nil {
					return failure(id, "ValueOn", err)
				}
				v := agg.Engine().ValueOn(ctx, txs, day)
				return success(id, "ValueOn", fmt.Sprintf("%s on %s", renderer.Money(v, currency), day))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "CAGR",
				Description: "CAGR returns the compound annual growth rate over the last N years.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"years": {Type: genai.TypeInteger, Description: "The window length in years."},
					},
					Required: []string{"years"},
				},
				Response: &genai.Schema{Type: genai.TypeString},
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				years, err := parseYears(args)
				if err != nil {
					return failure(id, "CAGR", err)
				}
				c := equity.WindowCAGR(agg.Engine().Build(ctx, txs).Series, years, date.Monthly)
				if c.CAGRPct == nil {
					return success(id, "CAGR", fmt.Sprintf("The series does not cover %d years.", years))
				}
				return success(id, "CAGR", fmt.Sprintf("%s per year from %s to %s (%.2f years)",
					renderer.Percent(*c.CAGRPct), c.StartLabel, c.EndLabel, *c.ElapsedYears))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Benchmark",
				Description: "Benchmark compares the portfolio return with the same cash flows invested in the benchmark index.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown comparison."},
			},
			Func: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				return success(id, "Benchmark", renderer.RenderBenchmark(agg.Benchmark(ctx, txs), currency))
			},
		},
	}
}

func parseDate(args map[string]any, today date.Date) (date.Date, error) {
	v, ok := args["date"]
	if !ok {
		return today, nil
	}
	s, ok := v.(string)
	if !ok {
		return today, fmt.Errorf("argument 'date' is not a string as expected but %T", v)
	}
	if s == "" {
		return today, nil
	}
	return date.Parse(s)
}

// parseYears reads a positive integer, JSON numbers being float64.
func parseYears(args map[string]any) (int, error) {
	switch v := args["years"].(type) {
	case float64:
		if v < 1 || v != math.Trunc(v) {
			return 0, fmt.Errorf("argument 'years' must be a positive integer, got %v", v)
		}
		return int(v), nil
	case int:
		if v < 1 {
			return 0, fmt.Errorf("argument 'years' must be a positive integer, got %v", v)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("argument 'years' is not a number but %T", v)
	}
}
