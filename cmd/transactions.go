package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/renderer"
)

// --- Buy and Sell Commands ---

type tradeCmd struct {
	command  portfolio.CommandType
	asset    string
	currency string
	date     string
	note     string
}

func (c *tradeCmd) Name() string { return string(c.command) }
func (c *tradeCmd) Synopsis() string {
	if c.command == portfolio.CmdSell {
		return "record a sale of an asset"
	}
	return "record a purchase of an asset"
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`pcs %s [-type <asset>] [-c <currency>] [-d <date>] [-m <note>] <symbol> <amount> <price>

  Records a %s of <amount> units of <symbol> at <price> per unit.
  See 'pcs topic transactions' and 'pcs topic dates'.
`, c.command, c.command)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "type", string(portfolio.Stock), "Asset type: stock, stock_us, crypto, gold, forex, fund or cash")
	f.StringVar(&c.currency, "c", "", "Currency of the price. Defaults to the asset type's currency")
	f.StringVar(&c.date, "d", "", "Transaction date. Defaults to today")
	f.StringVar(&c.note, "m", "", "An optional note")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	draft := portfolio.Draft{
		Command:  string(c.command),
		Asset:    c.asset,
		Symbol:   f.Arg(0),
		Amount:   f.Arg(1),
		Price:    f.Arg(2),
		Currency: c.currency,
		Date:     c.date,
		Note:     c.note,
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		tx, err := a.book.Admit(ctx, draft)
		if err != nil {
			fmt.Fprintf(stderr, "Error: transaction refused: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "%s on %s (%s)\n", renderer.Transaction(tx), tx.Date, tx.ID)
		return subcommands.ExitSuccess
	})
}

// --- Edit Command ---

type editCmd struct {
	command  string
	asset    string
	currency string
	date     string
	note     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "replace a transaction" }
func (*editCmd) Usage() string {
	return `pcs edit [-cmd buy|sell] [-type <asset>] [-c <currency>] [-d <date>] [-m <note>] <id> <symbol> <amount> <price>

  Replaces the transaction whose ID starts with <id>. Flags that are not
  given keep the value of the edited transaction.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.command, "cmd", "", "Transaction type: buy or sell")
	f.StringVar(&c.asset, "type", "", "Asset type")
	f.StringVar(&c.currency, "c", "", "Currency of the price")
	f.StringVar(&c.date, "d", "", "Transaction date")
	f.StringVar(&c.note, "m", "", "Note")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 4 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		old, err := findTransaction(a.book, f.Arg(0))
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		draft := portfolio.Draft{
			Command:  or(c.command, string(old.Command)),
			Asset:    or(c.asset, string(old.Asset)),
			Symbol:   f.Arg(1),
			Amount:   f.Arg(2),
			Price:    f.Arg(3),
			Currency: or(c.currency, string(old.Currency())),
			Date:     or(c.date, old.Date.String()),
			Note:     or(c.note, old.Note),
		}
		// a new asset type brings its own currency unless one is given
		if c.asset != "" && c.currency == "" {
			draft.Currency = ""
		}
		tx, err := a.book.Edit(ctx, old.ID, draft)
		if err != nil {
			fmt.Fprintf(stderr, "Error: edit refused: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "%s on %s (%s)\n", renderer.Transaction(tx), tx.Date, tx.ID)
		return subcommands.ExitSuccess
	})
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// --- Remove Command ---

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a transaction" }
func (*rmCmd) Usage() string {
	return `pcs rm <id>

  Deletes the transaction whose ID starts with <id>.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		tx, err := findTransaction(a.book, f.Arg(0))
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if _, err := a.book.Remove(ctx, tx.ID); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Deleted: %s on %s\n", renderer.Transaction(tx), tx.Date)
		return subcommands.ExitSuccess
	})
}
