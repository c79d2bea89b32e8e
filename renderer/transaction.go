package renderer

import (
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
)

// Transaction renders a transaction to a sentence.
func Transaction(tx portfolio.Transaction) string {
	switch tx.Command {
	case portfolio.CmdBuy:
		return fmt.Sprintf("Bought %s %s at %s for %s", tx.Amount, tx.Symbol, tx.Price, tx.Total())
	case portfolio.CmdSell:
		return fmt.Sprintf("Sold %s %s at %s for %s", tx.Amount, tx.Symbol, tx.Price, tx.Total())
	default:
		return tx.String()
	}
}

// TransactionsMarkdown renders the log, most recent first.
func TransactionsMarkdown(txs []portfolio.Transaction) string {
	var b strings.Builder
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	t := newTable(&b, "llllrrrl", "Date", "ID", "Type", "Symbol", "Amount", "Price", "Total", "Note")
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		t.row(
			tx.Date.String(),
			shortID(tx.ID),
			string(tx.Command),
			tx.Symbol,
			tx.Amount.String(),
			tx.Price.String(),
			tx.Total().String(),
			tx.Note,
		)
	}
	return b.String()
}

// shortID keeps enough of a uuid to type it back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
