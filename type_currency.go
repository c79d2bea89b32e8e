package portfolio

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Currency is one of the settlement currencies a transaction can be recorded in.
type Currency string

const (
	TRY Currency = "TRY"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// Domestic is the reporting currency. Every aggregate of a Snapshot is
// expressed in it and its rate is always 1.
const Domestic = TRY

// Currencies lists the supported currencies, domestic first.
func Currencies() []Currency { return []Currency{TRY, USD, EUR, GBP} }

// ParseCurrency parses a currency code, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case TRY, USD, EUR, GBP:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

func (c Currency) String() string { return string(c) }

// IsDomestic reports whether c is the reporting currency.
func (c Currency) IsDomestic() bool { return c == Domestic }

func (c *Currency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*c = ""
		return nil
	}
	v, err := ParseCurrency(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
