package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/renderer"
)

type txCmd struct {
	symbol string
	head   int
	tail   int
	json   bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions" }
func (*txCmd) Usage() string {
	return `pcs tx [-s <symbol>] [-head <n> | -tail <n>] [-json]

  Lists transactions, most recent first. -head keeps the oldest ones, -tail
  the most recent ones. -json prints them as in the data files.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.symbol, "s", "", "Only show transactions of this symbol")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
	f.BoolVar(&p.json, "json", false, "Print JSON lines")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		ledger := portfolio.NewLedger(a.book.Transactions()...)
		var filters []func(portfolio.Transaction) bool
		if p.symbol != "" {
			filters = append(filters, portfolio.BySymbol(p.symbol))
		}
		var txs []portfolio.Transaction
		for _, tx := range ledger.Transactions(filters...) {
			txs = append(txs, tx)
		}
		if p.head > 0 && len(txs) > p.head {
			txs = txs[:p.head]
		}
		if p.tail > 0 && len(txs) > p.tail {
			txs = txs[len(txs)-p.tail:]
		}

		if p.json {
			for _, tx := range txs {
				if err := portfolio.EncodeTransaction(stdout, tx); err != nil {
					fmt.Fprintln(stderr, "Error:", err)
					return subcommands.ExitFailure
				}
			}
			return subcommands.ExitSuccess
		}
		printMarkdown(renderer.TransactionsMarkdown(txs))
		return subcommands.ExitSuccess
	})
}
