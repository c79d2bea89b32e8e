package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
)

// --- Export Command ---

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a backup of the portfolio" }
func (*exportCmd) Usage() string {
	return `pcs export [<file>]

  Writes transactions, rates and prices to <file>, or to the standard output.
  See 'pcs topic backup'.
`
}

func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		var w io.Writer = stdout
		if f.NArg() == 1 {
			file, err := os.Create(f.Arg(0))
			if err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
			defer file.Close()
			w = file
		}
		backup := a.book.Export()
		if err := portfolio.EncodeBackup(w, backup); err != nil {
			fmt.Fprintln(stderr, "Error: could not write backup:", err)
			return subcommands.ExitFailure
		}
		if f.NArg() == 1 {
			fmt.Fprintf(stdout, "Exported %d transactions to %s.\n", len(backup.Transactions), f.Arg(0))
		}
		return subcommands.ExitSuccess
	})
}

// --- Import Command ---

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the portfolio with a backup" }
func (*importCmd) Usage() string {
	return `pcs import <file>

  Replaces the transactions, rates and prices with the content of a backup.
  Use '-' to read the standard input.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	var r io.Reader = stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}
	backup, err := portfolio.DecodeBackup(r)
	if err != nil {
		fmt.Fprintln(stderr, "Error: invalid backup:", err)
		return subcommands.ExitFailure
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		if err := a.book.Import(ctx, backup); err != nil {
			fmt.Fprintln(stderr, "Error: import failed:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Imported %d transactions.\n", len(backup.Transactions))
		return subcommands.ExitSuccess
	})
}

// --- Reset Command ---

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete every transaction and price" }
func (*resetCmd) Usage() string {
	return `pcs reset -y

  Deletes every transaction and every price entered by hand. Rates and the
  PIN are kept. Export a backup first.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm the reset")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(stderr, "Error: reset deletes all transactions, confirm with -y")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		n := len(a.book.Transactions())
		if err := a.book.Reset(ctx); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Deleted %d transactions.\n", n)
		return subcommands.ExitSuccess
	})
}
