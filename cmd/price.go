package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/renderer"
)

type priceCmd struct {
	clear bool
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "enter current prices by hand" }
func (*priceCmd) Usage() string {
	return `pcs price
pcs price <symbol> <price> [<symbol> <price>...]
pcs price -clear <symbol>...

  Prices entered by hand value a holding instead of its average cost.
  Prices are in the currency of the position.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "Forget the price of the given symbols")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	raw := make(map[string]string)
	switch {
	case c.clear && len(args) > 0:
		for _, symbol := range args {
			raw[symbol] = ""
		}
	case !c.clear && len(args)%2 == 0:
		for i := 0; i < len(args); i += 2 {
			raw[args[i]] = args[i+1]
		}
	default:
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app) subcommands.ExitStatus {
		if len(raw) > 0 {
			if _, err := a.book.SetPrices(ctx, raw); err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
		}
		printMarkdown(renderer.PricesMarkdown(a.book.Prices()))
		return subcommands.ExitSuccess
	})
}
