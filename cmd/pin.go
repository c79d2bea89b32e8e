package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type pinCmd struct {
	old string
}

func (*pinCmd) Name() string     { return "pin" }
func (*pinCmd) Synopsis() string { return "set the PIN protecting the server" }
func (*pinCmd) Usage() string {
	return `pcs pin [-old <pin>] <new pin>

  Sets the PIN, at least 4 digits, asked by 'pcs serve'. Changing an existing PIN
  requires the old one.
`
}

func (c *pinCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.old, "old", "", "The current PIN")
}

func (c *pinCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		has, err := a.book.HasPIN(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if has {
			if err := a.book.Unlock(ctx, c.old); err != nil {
				fmt.Fprintln(stderr, "Error: old PIN:", err)
				return subcommands.ExitFailure
			}
		}
		if err := a.book.SetPIN(ctx, f.Arg(0)); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, "PIN set.")
		return subcommands.ExitSuccess
	})
}
