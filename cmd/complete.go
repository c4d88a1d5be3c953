package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors completes the values of flags shared by several commands.
var flagPredictors = map[string]complete.Predictor{
	"p":    predict.Set{"daily", "weekly", "monthly", "quarterly", "yearly"},
	"m":    predict.Set{"currency", "eps", "shares", "percent", "ratio"},
	"s":    predict.Set{"series", "returns", "holdings"},
	"f":    predict.Set{"md", "html", "xlsx"},
	"o":    predict.Files("*"),
	"from": predict.Dirs("*"),
	"to":   predict.Files("*.db"),
}

// predictor returns the completion of a flag value, nothing for booleans.
func predictor(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	if p, ok := flagPredictors[fl.Name]; ok {
		return p
	}
	return predict.Something
}

// Completion returns the shell completion tree of every command and its flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"env":    predict.Files("*"),
			"v":      predict.Nothing,
		},
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(fl *flag.Flag) { sub.Flags[fl.Name] = predictor(fl) })
		root.Sub[c.Name()] = sub
	}
	root.Sub["topic"].Args = predict.Set{"readme", "config", "ledger", "valuation", "api", "*"}
	return root
}

// IsCommand reports whether name is a builtin command.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}
