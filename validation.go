package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation errors. Admission failures wrap one or more of them.
var (
	ErrInvalidNumber        = errors.New("invalid number")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrEmptySymbol          = errors.New("symbol is empty")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrUnknownCommand       = errors.New("unknown transaction type")
	ErrUnknownAsset         = errors.New("unknown asset type")
	ErrUnknownCurrency      = errors.New("unknown currency")
	ErrCurrencyMismatch     = errors.New("currency mismatch")
	ErrNotFound             = errors.New("transaction not found")
)

// Draft is a transaction as typed by the user, before any parsing.
type Draft struct {
	Command  string
	Asset    string
	Symbol   string
	Amount   string
	Price    string
	Currency string // empty means the asset type's default currency
	Date     string // empty means today, see ParseDate for accepted forms
	Note     string
}

// Admit turns a draft into a transaction that can be appended to 'existing'.
//
// When 'replacing' is the ID of a transaction in 'existing', the draft is an
// edit of it: the returned transaction keeps that ID and the holdings check
// ignores the replaced record. Otherwise a new ID is assigned.
//
// The returned error joins every failure found in the draft.
func Admit(d Draft, existing []Transaction, replacing string) (Transaction, error) {
	tx, err := parseDraft(d)
	if err != nil {
		return Transaction{}, err
	}
	if err := Validate(tx); err != nil {
		return Transaction{}, err
	}
	if err := checkAgainst(tx, existing, replacing); err != nil {
		return Transaction{}, err
	}
	if replacing != "" {
		tx.ID = replacing
	} else {
		tx.ID = uuid.NewString()
	}
	return tx, nil
}

// parseDraft converts every field, collecting all failures.
func parseDraft(d Draft) (Transaction, error) {
	var errs []error
	tx := Transaction{
		Symbol: strings.ToUpper(strings.TrimSpace(d.Symbol)),
		Note:   strings.TrimSpace(d.Note),
	}

	cmd, err := ParseCommand(d.Command)
	if err != nil {
		errs = append(errs, err)
	}
	tx.Command = cmd

	asset, err := ParseAssetType(d.Asset)
	if err != nil {
		errs = append(errs, err)
	}
	tx.Asset = asset

	currency := asset.DefaultCurrency()
	if strings.TrimSpace(d.Currency) != "" {
		if currency, err = ParseCurrency(d.Currency); err != nil {
			errs = append(errs, err)
		}
	}

	if amount, err := ParseQuantity(d.Amount); err != nil {
		errs = append(errs, fmt.Errorf("amount: %w", err))
	} else {
		tx.Amount = amount
	}
	if price, err := ParseMoney(d.Price, currency); err != nil {
		errs = append(errs, fmt.Errorf("price: %w", err))
	} else {
		tx.Price = price
	}
	if on, err := ParseDate(d.Date); err != nil {
		errs = append(errs, err)
	} else {
		tx.Date = on
	}
	if err := errors.Join(errs...); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Validate checks the intrinsic constraints of a transaction, those that do
// not depend on other transactions.
func Validate(tx Transaction) error {
	var errs []error
	if tx.Command != CmdBuy && tx.Command != CmdSell {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCommand, tx.Command))
	}
	if _, err := ParseAssetType(string(tx.Asset)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseCurrency(string(tx.Currency())); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(tx.Symbol) == "" {
		errs = append(errs, ErrEmptySymbol)
	}
	if !tx.Amount.IsPositive() {
		errs = append(errs, fmt.Errorf("%w, got %s", ErrNonPositiveAmount, tx.Amount))
	}
	if tx.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("%w, got %s", ErrNegativePrice, tx.Price.value))
	}
	if tx.Date.IsZero() {
		errs = append(errs, fmt.Errorf("%w: missing", ErrInvalidDate))
	}
	return errors.Join(errs...)
}

// checkAgainst runs the checks that need the rest of the log.
func checkAgainst(tx Transaction, existing []Transaction, replacing string) error {
	var errs []error
	for _, o := range existing {
		if o.ID == replacing && replacing != "" {
			continue
		}
		if o.Symbol == tx.Symbol && o.Currency() != tx.Currency() {
			errs = append(errs, fmt.Errorf("%w: %s is recorded in %s, not %s", ErrCurrencyMismatch, tx.Symbol, o.Currency(), tx.Currency()))
			break
		}
	}
	if tx.Command == CmdSell {
		held := HeldAmount(existing, tx.Symbol, replacing)
		if held.LessThan(tx.Amount) {
			errs = append(errs, fmt.Errorf("%w: cannot sell %s %s, holding %s", ErrInsufficientHoldings, tx.Amount, tx.Symbol, held))
		}
	}
	if replacing != "" {
		// the edited record may have been a buy later sells rely on
		for _, o := range existing {
			if o.ID != replacing || (o.Symbol == tx.Symbol && tx.Command == CmdSell) {
				continue
			}
			held := HeldAmount(existing, o.Symbol, replacing)
			if o.Symbol == tx.Symbol {
				held = held.Add(tx.Amount)
			}
			if held.IsNegative() {
				errs = append(errs, fmt.Errorf("%w: %s would be oversold by %s", ErrInsufficientHoldings, o.Symbol, held.Neg()))
			}
		}
	}
	return errors.Join(errs...)
}

// CheckRemoval reports whether the transaction id can leave the log without
// leaving its symbol oversold.
func CheckRemoval(existing []Transaction, id string) error {
	for _, tx := range existing {
		if tx.ID != id || tx.Command != CmdBuy {
			continue
		}
		if held := HeldAmount(existing, tx.Symbol, id); held.IsNegative() {
			return fmt.Errorf("%w: removing %s leaves %s oversold by %s", ErrInsufficientHoldings, tx, tx.Symbol, held.Neg())
		}
	}
	return nil
}

// CheckLog runs the checks of admission on a whole log: every record is
// valid, a symbol is always traded in the same currency, and no symbol is
// sold beyond what was bought. Every failure is reported.
func CheckLog(txs []Transaction) error {
	var errs []error
	currencies := make(map[string]Currency)
	held := make(map[string]Quantity)
	var symbols []string
	for i, tx := range txs {
		if err := Validate(tx); err != nil {
			errs = append(errs, fmt.Errorf("transaction #%d (%s): %w", i+1, tx.Symbol, err))
			continue
		}
		c, seen := currencies[tx.Symbol]
		switch {
		case !seen:
			currencies[tx.Symbol] = tx.Currency()
			symbols = append(symbols, tx.Symbol)
		case c != tx.Currency():
			errs = append(errs, fmt.Errorf("transaction #%d: %w: %s is recorded in %s, not %s", i+1, ErrCurrencyMismatch, tx.Symbol, c, tx.Currency()))
			continue
		}
		if tx.Command == CmdBuy {
			held[tx.Symbol] = held[tx.Symbol].Add(tx.Amount)
		} else {
			held[tx.Symbol] = held[tx.Symbol].Sub(tx.Amount)
		}
	}
	for _, s := range symbols {
		if q := held[s]; q.IsNegative() {
			errs = append(errs, fmt.Errorf("%w: %s is oversold by %s", ErrInsufficientHoldings, s, q.Neg()))
		}
	}
	return errors.Join(errs...)
}

// HeldAmount returns the cumulative buys minus sells of 'symbol' in txs,
// skipping the transaction whose ID is 'excluding' (if not empty).
func HeldAmount(txs []Transaction, symbol, excluding string) Quantity {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var held Quantity
	for _, tx := range txs {
		if tx.Symbol != symbol || (excluding != "" && tx.ID == excluding) {
			continue
		}
		switch tx.Command {
		case CmdBuy:
			held = held.Add(tx.Amount)
		case CmdSell:
			held = held.Sub(tx.Amount)
		}
	}
	return held
}
