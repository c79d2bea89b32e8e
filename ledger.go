package portfolio

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
)

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order. Transactions
// of the same day keep their insertion order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates a ledger holding txs.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{transactions: make([]Transaction, 0, len(txs))}
	l.Append(txs...)
	return l
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append appends transactions to this ledger and maintains the chronological order of transactions.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// Replace swaps the transaction with the same ID as tx.
func (l *Ledger) Replace(tx Transaction) error {
	i := l.index(tx.ID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, tx.ID)
	}
	l.transactions[i] = tx
	l.stableSort()
	return nil
}

// Delete removes the transaction with the given ID and returns it.
func (l *Ledger) Delete(id string) (Transaction, error) {
	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	tx := l.transactions[i]
	l.transactions = slices.Delete(l.transactions, i, i+1)
	return tx, nil
}

// Get returns the transaction with the given ID.
func (l *Ledger) Get(id string) (Transaction, bool) {
	i := l.index(id)
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

func (l *Ledger) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
}

// Transactions returns an iterator over the transactions accepted by at least
// one of the filters, or all of them when no filter is given.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(tx) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// All returns a copy of the transactions in chronological order.
func (l *Ledger) All() []Transaction { return slices.Clone(l.transactions) }

// Symbols returns the sorted list of symbols ever traded.
func (l *Ledger) Symbols() []string {
	var symbols []string
	for _, tx := range l.transactions {
		if !slices.Contains(symbols, tx.Symbol) {
			symbols = append(symbols, tx.Symbol)
		}
	}
	slices.Sort(symbols)
	return symbols
}

// BySymbol accepts transactions on the given symbol.
func BySymbol(symbol string) func(Transaction) bool {
	symbol = strings.ToUpper(symbol)
	return func(tx Transaction) bool { return tx.Symbol == symbol }
}

// ByCommand accepts transactions of the given command.
func ByCommand(cmd CommandType) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Command == cmd }
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}
