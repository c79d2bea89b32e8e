package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceOverrides holds the prices the user entered by hand, per symbol. A
// symbol with no entry has no override. Prices are read in the currency of
// the symbol's position.
//
// PriceOverrides is immutable: With and Without return a new value.
type PriceOverrides struct {
	prices map[string]decimal.Decimal
}

// ParsePriceOverrides builds overrides from raw user input. Empty strings
// mean "no override". Invalid or negative prices are all reported.
func ParsePriceOverrides(raw map[string]string) (PriceOverrides, error) {
	p := PriceOverrides{prices: make(map[string]decimal.Decimal, len(raw))}
	var errs []error
	for _, symbol := range slices.Sorted(maps.Keys(raw)) {
		s := strings.TrimSpace(raw[symbol])
		if s == "" {
			continue
		}
		price, err := parseDecimal(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("price of %s: %w", symbol, err))
			continue
		}
		if price.IsNegative() {
			errs = append(errs, fmt.Errorf("price of %s: %w, got %s", symbol, ErrNegativePrice, price))
			continue
		}
		p.prices[canonical(symbol)] = price
	}
	if err := errors.Join(errs...); err != nil {
		return PriceOverrides{}, err
	}
	return p, nil
}

func canonical(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// Price returns the override for symbol, if any.
func (p PriceOverrides) Price(symbol string) (decimal.Decimal, bool) {
	v, ok := p.prices[canonical(symbol)]
	return v, ok
}

// With returns a copy with the override of symbol set to price.
func (p PriceOverrides) With(symbol string, price decimal.Decimal) (PriceOverrides, error) {
	if canonical(symbol) == "" {
		return p, ErrEmptySymbol
	}
	if price.IsNegative() {
		return p, fmt.Errorf("price of %s: %w, got %s", symbol, ErrNegativePrice, price)
	}
	n := p.clone()
	n.prices[canonical(symbol)] = price
	return n, nil
}

// Without returns a copy with no override for symbol.
func (p PriceOverrides) Without(symbol string) PriceOverrides {
	n := p.clone()
	delete(n.prices, canonical(symbol))
	return n
}

func (p PriceOverrides) clone() PriceOverrides {
	n := PriceOverrides{prices: maps.Clone(p.prices)}
	if n.prices == nil {
		n.prices = make(map[string]decimal.Decimal)
	}
	return n
}

// Symbols returns the symbols with an override, sorted.
func (p PriceOverrides) Symbols() []string { return slices.Sorted(maps.Keys(p.prices)) }

// Len returns the number of overrides.
func (p PriceOverrides) Len() int { return len(p.prices) }

// MarshalJSON writes overrides as a symbol to number object, sorted by symbol.
func (p PriceOverrides) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, s := range p.Symbols() {
		w.Append(s, p.prices[s])
	}
	return w.MarshalJSON()
}

// UnmarshalJSON accepts numbers or strings. Empty strings and nulls are no override.
func (p *PriceOverrides) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	texts := make(map[string]string, len(raw))
	for k, v := range raw {
		var s *string
		if err := json.Unmarshal(v, &s); err == nil {
			if s == nil {
				continue
			}
			texts[k] = *s
			continue
		}
		texts[k] = string(v)
	}
	n, err := ParsePriceOverrides(texts)
	if err != nil {
		return err
	}
	*p = n
	return nil
}
