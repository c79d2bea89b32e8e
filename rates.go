package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned for rates that are not strictly positive, or a
// domestic rate other than 1.
var ErrInvalidRate = errors.New("invalid rate")

var one = decimal.NewFromInt(1)

// RateTable maps a currency to the number of domestic units one unit of it
// is worth. It is immutable: With returns a new table.
//
// The domestic currency is always worth 1. A currency absent from the table,
// or with a zero rate, is also read as 1.
type RateTable struct {
	rates map[Currency]decimal.Decimal
}

// DefaultRates returns the rates used until the user edits or refreshes them.
func DefaultRates() RateTable {
	return RateTable{rates: map[Currency]decimal.Decimal{
		USD: decimal.RequireFromString("32.50"),
		EUR: decimal.RequireFromString("35.20"),
		GBP: decimal.RequireFromString("41.10"),
	}}
}

// NewRateTable validates rates and returns a table holding them.
func NewRateTable(rates map[Currency]decimal.Decimal) (RateTable, error) {
	t := RateTable{rates: make(map[Currency]decimal.Decimal, len(rates))}
	var errs []error
	for c, r := range rates {
		if err := checkRate(c, r); err != nil {
			errs = append(errs, err)
			continue
		}
		if !c.IsDomestic() {
			t.rates[c] = r
		}
	}
	return t, errors.Join(errs...)
}

// ParseRate parses a user supplied rate for currency c.
func ParseRate(c Currency, s string) (decimal.Decimal, error) {
	r, err := parseDecimal(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate for %s: %w", c, err)
	}
	return r, checkRate(c, r)
}

func checkRate(c Currency, r decimal.Decimal) error {
	if _, err := ParseCurrency(string(c)); err != nil {
		return err
	}
	if c.IsDomestic() && !r.Equal(one) {
		return fmt.Errorf("%w: %s is the domestic currency, its rate is 1", ErrInvalidRate, c)
	}
	if !r.IsPositive() {
		return fmt.Errorf("%w: %s rate must be positive, got %s", ErrInvalidRate, c, r)
	}
	return nil
}

// Rate returns the domestic value of one unit of c.
func (t RateTable) Rate(c Currency) decimal.Decimal {
	if c.IsDomestic() {
		return one
	}
	r, ok := t.rates[c]
	if !ok || r.IsZero() {
		return one
	}
	return r
}

// With returns a copy of the table with the rate of c set to r.
func (t RateTable) With(c Currency, r decimal.Decimal) (RateTable, error) {
	if err := checkRate(c, r); err != nil {
		return t, err
	}
	n := RateTable{rates: maps.Clone(t.rates)}
	if n.rates == nil {
		n.rates = make(map[Currency]decimal.Decimal)
	}
	if !c.IsDomestic() {
		n.rates[c] = r
	}
	return n, nil
}

// Merge returns a copy of the table updated with every rate of u.
func (t RateTable) Merge(u RateTable) RateTable {
	n := RateTable{rates: maps.Clone(t.rates)}
	if n.rates == nil {
		n.rates = make(map[Currency]decimal.Decimal)
	}
	maps.Copy(n.rates, u.rates)
	return n
}

// Convert returns m expressed in the domestic currency.
func (t RateTable) Convert(m Money) Money {
	return Money{value: m.value.Mul(t.Rate(m.cur)), cur: Domestic}
}

// Currencies returns the foreign currencies with an explicit rate, sorted.
func (t RateTable) Currencies() []Currency {
	return slices.Sorted(maps.Keys(t.rates))
}

// Equal reports whether both tables give the same rate for every currency.
func (t RateTable) Equal(u RateTable) bool {
	for _, c := range Currencies() {
		if !t.Rate(c).Equal(u.Rate(c)) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the table as an object keyed by currency code, domestic included.
func (t RateTable) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append(string(Domestic), one)
	for _, c := range t.Currencies() {
		w.Append(string(c), t.rates[c])
	}
	return w.MarshalJSON()
}

func (t *RateTable) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rates := make(map[Currency]decimal.Decimal, len(raw))
	for k, v := range raw {
		c, err := ParseCurrency(k)
		if err != nil {
			return err
		}
		rates[c] = v
	}
	n, err := NewRateTable(rates)
	if err != nil {
		return err
	}
	*t = n
	return nil
}
