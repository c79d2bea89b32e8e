package portfolio

import (
	"sort"
)

// event represents a single, atomic operation in the portfolio's history.
// It is the lowest-level, immutable fact from which all states are derived.
type event interface {
	date() Date
}

// Journal holds a chronologically sorted list of all atomic events.
type Journal struct {
	events []event // sorted by date, same day in input order
}

// --- Cash Events ---

// creditCash is cash the holder put into the portfolio to pay for a buy.
type creditCash struct {
	on     Date
	amount Money // in the transaction currency
}

func (e creditCash) date() Date { return e.on }

// debitCash is cash the holder took out of the portfolio from a sell.
type debitCash struct {
	on     Date
	amount Money // in the transaction currency
}

func (e debitCash) date() Date { return e.on }

// --- Position Events ---

// acquireLot adds units of a symbol at a unit price.
type acquireLot struct {
	on       Date
	symbol   string
	asset    AssetType
	quantity Quantity
	price    Money
}

func (e acquireLot) date() Date { return e.on }

// disposeLot removes units of a symbol at a unit price.
type disposeLot struct {
	on       Date
	symbol   string
	asset    AssetType
	quantity Quantity
	price    Money
}

func (e disposeLot) date() Date { return e.on }

// NewJournal converts transactions, in any order, into a Journal of atomic
// events. Transactions of the same day keep their relative order.
func NewJournal(txs []Transaction) *Journal {
	journal := &Journal{
		events: make([]event, 0, len(txs)*2),
	}
	for _, tx := range txs {
		switch tx.Command {
		case CmdBuy:
			journal.events = append(journal.events,
				creditCash{on: tx.Date, amount: tx.Total()},
				acquireLot{on: tx.Date, symbol: canonical(tx.Symbol), asset: tx.Asset, quantity: tx.Amount, price: tx.Price},
			)
		case CmdSell:
			journal.events = append(journal.events,
				debitCash{on: tx.Date, amount: tx.Total()},
				disposeLot{on: tx.Date, symbol: canonical(tx.Symbol), asset: tx.Asset, quantity: tx.Amount, price: tx.Price},
			)
		}
	}
	sort.SliceStable(journal.events, func(i, j int) bool {
		return journal.events[i].date().Before(journal.events[j].date())
	})
	return journal
}

// Len returns the number of events.
func (j *Journal) Len() int { return len(j.events) }
