package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/store"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the transaction file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `pcs fmt

  Validates the transaction file of a file store, sorts it by date, gives an
  ID to transactions written by hand without one, and writes it back in a
  canonical JSONL format.
`
}

func (*fmtCmd) SetFlags(*flag.FlagSet) {}

func (*fmtCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		f, ok := a.store.(*store.File)
		if !ok {
			fmt.Fprintf(stderr, "Error: fmt only applies to the %q store driver\n", "file")
			return subcommands.ExitFailure
		}
		n, err := f.Format(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "Error: could not format transactions:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Formatted %d transactions.\n", n)
		return subcommands.ExitSuccess
	})
}
