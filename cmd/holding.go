package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/renderer"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	query string
	json  bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the current holdings" }
func (*holdingCmd) Usage() string {
	return `pcs holding [-q <text>] [-json]

  Displays every position still held, valued at the manual price when one
  was entered, or at its average cost otherwise.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Only show symbols containing this text")
	f.BoolVar(&c.json, "json", false, "Print JSON")
}

func (c *holdingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		var held []portfolio.Position
		for _, p := range a.book.Snapshot().Search(c.query) {
			if p.IsHeld() {
				held = append(held, p)
			}
		}
		if c.json {
			if held == nil {
				held = []portfolio.Position{}
			}
			if err := json.NewEncoder(stdout).Encode(held); err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}
		printMarkdown(renderer.HoldingsMarkdown(held))
		return subcommands.ExitSuccess
	})
}
