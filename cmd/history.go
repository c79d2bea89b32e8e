package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/renderer"
)

type historyCmd struct {
	query string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display realized profits and losses" }
func (*historyCmd) Usage() string {
	return `pcs history [-q <text>]

  Displays every position that is held or has realized a profit or a loss,
  including the ones that were sold out.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Only show symbols containing this text")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		printMarkdown(renderer.HistoryMarkdown(a.book.Snapshot().Search(c.query)))
		return subcommands.ExitSuccess
	})
}
