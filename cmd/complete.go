package cmd

import (
	"flag"
	"io"

	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagValues predicts the values of flags shared by several commands.
var flagValues = map[string]complete.Predictor{
	"type": predict.Set(assetNames()),
	"c":    predict.Set(currencyNames()),
	"cmd":  predict.Set{string(portfolio.CmdBuy), string(portfolio.CmdSell)},
}

// argValues predicts positional arguments, per command.
var argValues = map[string]complete.Predictor{
	"rates":  predict.Set{"show", "set", "refresh"},
	"topic":  complete.PredictFunc(predictTopics),
	"export": predict.Files("*.json"),
	"import": predict.Files("*.json"),
}

// Completion describes the command line for shell completion. It is built
// from the flags each subcommand declares.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"v":      predict.Nothing,
			"raw":    predict.Nothing,
		},
	}
	for _, g := range groups() {
		for _, c := range g.commands {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			c.SetFlags(fs)

			sub := &complete.Command{Flags: map[string]complete.Predictor{}, Args: predict.Something}
			fs.VisitAll(func(f *flag.Flag) {
				sub.Flags[f.Name] = flagPredictor(f)
			})
			if p, ok := argValues[c.Name()]; ok {
				sub.Args = p
			}
			root.Sub[c.Name()] = sub
		}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{Args: predict.Set(commandNames())}
	}
	return root
}

func flagPredictor(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	if p, ok := flagValues[f.Name]; ok {
		return p
	}
	return predict.Something
}

func commandNames() []string {
	var names []string
	for _, g := range groups() {
		for _, c := range g.commands {
			names = append(names, c.Name())
		}
	}
	return names
}

func assetNames() []string {
	var names []string
	for _, a := range portfolio.AssetTypes() {
		names = append(names, string(a))
	}
	return names
}

func currencyNames() []string {
	var names []string
	for _, c := range portfolio.Currencies() {
		names = append(names, string(c))
	}
	return names
}

func predictTopics(string) []string { return append(docs.Topics(), docs.All) }
