package portfolio

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// tl is a shortcut to create Money in TRY.
func tl[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return M(value, TRY)
}

// usd is a shortcut to create Money in USD.
func usd[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return M(value, USD)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// rateTable returns a table with the given currency/rate pairs.
func rateTable(t *testing.T, pairs ...any) RateTable {
	t.Helper()
	r := RateTable{}
	for i := 0; i < len(pairs); i += 2 {
		var err error
		r, err = r.With(pairs[i].(Currency), dec(pairs[i+1].(string)))
		if err != nil {
			t.Fatalf("rateTable: %v", err)
		}
	}
	return r
}

func buy(on string, symbol string, amount float64, price Money) Transaction {
	asset := Stock
	if price.Currency() == USD {
		asset = StockUS
	}
	return NewBuy(MustParse(on), asset, symbol, Q(amount), price)
}

func sell(on string, symbol string, amount float64, price Money) Transaction {
	asset := Stock
	if price.Currency() == USD {
		asset = StockUS
	}
	return NewSell(MustParse(on), asset, symbol, Q(amount), price)
}

func mustPosition(t *testing.T, s *Snapshot, symbol string) Position {
	t.Helper()
	p, ok := s.Position(symbol)
	if !ok {
		t.Fatalf("no position on %s", symbol)
	}
	return p
}

func symbols(ps []Position) []string {
	var res []string
	for _, p := range ps {
		res = append(res, p.Symbol)
	}
	return res
}

// memStore is an in-memory Store. Setting fail makes every call fail.
type memStore struct {
	mu     sync.Mutex
	txs    []Transaction
	rates  RateTable
	prices PriceOverrides
	pin    string
	fail   error
}

func (m *memStore) Transactions(context.Context) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return slices.Clone(m.txs), nil
}

func (m *memStore) Add(_ context.Context, tx Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.txs = append(m.txs, tx)
	return nil
}

func (m *memStore) Replace(_ context.Context, tx Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for i, o := range m.txs {
		if o.ID == tx.ID {
			m.txs[i] = tx
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.txs = slices.DeleteFunc(m.txs, func(tx Transaction) bool { return tx.ID == id })
	return nil
}

func (m *memStore) Rates(context.Context) (RateTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rates, m.fail
}

func (m *memStore) SaveRates(_ context.Context, r RateTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.rates = r
	return nil
}

func (m *memStore) Prices(context.Context) (PriceOverrides, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prices, m.fail
}

func (m *memStore) SavePrices(_ context.Context, p PriceOverrides) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.prices = p
	return nil
}

func (m *memStore) PIN(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pin, m.fail
}

func (m *memStore) SavePIN(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.pin = hash
	return nil
}

func (m *memStore) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.txs, m.prices = nil, PriceOverrides{}
	return nil
}

func (m *memStore) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

var errDown = errors.New("store is down")
