package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store persists the inputs of a valuation.
type Store interface {
	Transactions(ctx context.Context) ([]Transaction, error)
	Add(ctx context.Context, tx Transaction) error
	Replace(ctx context.Context, tx Transaction) error
	Delete(ctx context.Context, id string) error
	Rates(ctx context.Context) (RateTable, error)
	SaveRates(ctx context.Context, rates RateTable) error
	Prices(ctx context.Context) (PriceOverrides, error)
	SavePrices(ctx context.Context, prices PriceOverrides) error
	// PIN returns the stored PIN hash, or "" when none was set.
	PIN(ctx context.Context) (string, error)
	SavePIN(ctx context.Context, hash string) error
	// Reset deletes every transaction and price override. Rates and PIN are kept.
	Reset(ctx context.Context) error
}

// LogReplacer is implemented by stores able to swap the whole transaction
// log at once: either every transaction is stored or the old log is kept.
type LogReplacer interface {
	ReplaceLog(ctx context.Context, txs []Transaction) error
}

// RateSource fetches current exchange rates.
type RateSource interface {
	Latest(ctx context.Context) (RateTable, error)
}

// Summarizer writes a free text commentary on a digest.
type Summarizer interface {
	Summarize(ctx context.Context, d Digest) (string, error)
}

// ErrStale is joined to collaborator failures after which the Book keeps
// working on its last known inputs. Such errors are worth reporting but not
// fatal.
var ErrStale = errors.New("using last known data")

// Book is the application service around the valuation engine. It keeps the
// last inputs successfully read from its Store, routes every change through
// admission and the Store, and values the inputs on demand.
//
// A Book is safe for concurrent use.
type Book struct {
	store  Store
	valuer *Valuer
	log    logrus.FieldLogger

	pinMu sync.Mutex // serializes the first PIN setting

	mu     sync.RWMutex
	ledger *Ledger
	rates  RateTable
	prices PriceOverrides
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger, logrus' standard logger by default.
func WithLogger(log logrus.FieldLogger) Option { return func(b *Book) { b.log = log } }

// WithValuer sets the snapshot cache.
func WithValuer(v *Valuer) Option { return func(b *Book) { b.valuer = v } }

// WithRates sets the rates used until Load succeeds, DefaultRates otherwise.
func WithRates(r RateTable) Option { return func(b *Book) { b.rates = r } }

// NewBook returns an empty Book on store. Call Load to read the store.
func NewBook(store Store, opts ...Option) *Book {
	b := &Book{
		store:  store,
		valuer: NewValuer(10 * time.Minute),
		log:    logrus.StandardLogger(),
		ledger: NewLedger(),
		rates:  DefaultRates(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reads the three inputs from the store. An input that cannot be read
// keeps its previous value and the returned error wraps ErrStale.
func (b *Book) Load(ctx context.Context) error {
	var errs []error
	txs, err := b.store.Transactions(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("could not read transactions: %w", err))
	}
	rates, rerr := b.store.Rates(ctx)
	if rerr != nil {
		errs = append(errs, fmt.Errorf("could not read rates: %w", rerr))
	}
	prices, perr := b.store.Prices(ctx)
	if perr != nil {
		errs = append(errs, fmt.Errorf("could not read prices: %w", perr))
	}

	b.mu.Lock()
	if err == nil {
		b.ledger = NewLedger(txs...)
	}
	if rerr == nil {
		b.rates = rates
	}
	if perr == nil {
		b.prices = prices
	}
	n := b.ledger.Len()
	b.mu.Unlock()

	if len(errs) > 0 {
		err := errors.Join(append(errs, ErrStale)...)
		b.log.WithError(err).Warn("load failed, keeping last known data")
		return err
	}
	b.log.WithField("transactions", n).Debug("book loaded")
	return nil
}

// Snapshot values the current inputs.
func (b *Book) Snapshot() *Snapshot {
	b.mu.RLock()
	txs, rates, prices := b.ledger.All(), b.rates, b.prices
	b.mu.RUnlock()
	return b.valuer.Snapshot(txs, rates, prices)
}

// Transactions returns the log in chronological order.
func (b *Book) Transactions() []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.All()
}

// Transaction returns the transaction with the given ID.
func (b *Book) Transaction(id string) (Transaction, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Get(id)
}

// Rates returns the current rate table.
func (b *Book) Rates() RateTable {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rates
}

// Prices returns the current price overrides.
func (b *Book) Prices() PriceOverrides {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prices
}

// Admit validates the draft against the log, stores it and appends it.
func (b *Book) Admit(ctx context.Context, d Draft) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, err := Admit(d, b.ledger.All(), "")
	if err != nil {
		return Transaction{}, err
	}
	if err := b.store.Add(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("could not store transaction: %w", err)
	}
	b.ledger.Append(tx)
	b.log.WithFields(logrus.Fields{"id": tx.ID, "symbol": tx.Symbol, "type": tx.Command}).Info("transaction added")
	return tx, nil
}

// Edit replaces the transaction id with the draft.
func (b *Book) Edit(ctx context.Context, id string, d Draft) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ledger.Get(id); !ok {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	tx, err := Admit(d, b.ledger.All(), id)
	if err != nil {
		return Transaction{}, err
	}
	if err := b.store.Replace(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("could not store transaction: %w", err)
	}
	if err := b.ledger.Replace(tx); err != nil {
		return Transaction{}, err
	}
	b.log.WithFields(logrus.Fields{"id": tx.ID, "symbol": tx.Symbol}).Info("transaction replaced")
	return tx, nil
}

// Remove deletes the transaction id.
func (b *Book) Remove(ctx context.Context, id string) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, ok := b.ledger.Get(id)
	if !ok {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err := CheckRemoval(b.ledger.All(), id); err != nil {
		return Transaction{}, err
	}
	if err := b.store.Delete(ctx, id); err != nil {
		return Transaction{}, fmt.Errorf("could not delete transaction: %w", err)
	}
	if _, err := b.ledger.Delete(id); err != nil {
		return Transaction{}, err
	}
	b.log.WithFields(logrus.Fields{"id": id, "symbol": tx.Symbol}).Info("transaction deleted")
	return tx, nil
}

// SetRate parses and stores the rate of one currency.
func (b *Book) SetRate(ctx context.Context, c Currency, rate string) (RateTable, error) {
	r, err := ParseRate(c, rate)
	if err != nil {
		return b.Rates(), err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rates, err := b.rates.With(c, r)
	if err != nil {
		return b.rates, err
	}
	return b.saveRates(ctx, rates)
}

// SetRates stores a whole rate table.
func (b *Book) SetRates(ctx context.Context, rates RateTable) (RateTable, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveRates(ctx, b.rates.Merge(rates))
}

func (b *Book) saveRates(ctx context.Context, rates RateTable) (RateTable, error) {
	if err := b.store.SaveRates(ctx, rates); err != nil {
		return b.rates, fmt.Errorf("could not store rates: %w", err)
	}
	b.rates = rates
	b.log.WithField("currencies", rates.Currencies()).Info("rates updated")
	return rates, nil
}

// RefreshRates fetches rates from src and stores them. On failure the
// current rates are kept and the error wraps ErrStale.
func (b *Book) RefreshRates(ctx context.Context, src RateSource) (RateTable, error) {
	fetched, err := src.Latest(ctx)
	if err != nil {
		err = errors.Join(fmt.Errorf("could not refresh rates: %w", err), ErrStale)
		b.log.WithError(err).Warn("rate refresh failed")
		return b.Rates(), err
	}
	return b.SetRates(ctx, fetched)
}

// SetPrices updates overrides from raw user input: a symbol mapped to an
// empty string loses its override, other symbols not in raw are untouched.
func (b *Book) SetPrices(ctx context.Context, raw map[string]string) (PriceOverrides, error) {
	set := make(map[string]string, len(raw))
	var cleared []string
	for symbol, price := range raw {
		if price == "" {
			cleared = append(cleared, symbol)
		} else {
			set[symbol] = price
		}
	}
	parsed, err := ParsePriceOverrides(set)
	if err != nil {
		return b.Prices(), err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	prices := b.prices
	for _, symbol := range cleared {
		prices = prices.Without(symbol)
	}
	for _, symbol := range parsed.Symbols() {
		v, _ := parsed.Price(symbol)
		if prices, err = prices.With(symbol, v); err != nil {
			return b.prices, err
		}
	}
	if err := b.store.SavePrices(ctx, prices); err != nil {
		return b.prices, fmt.Errorf("could not store prices: %w", err)
	}
	b.prices = prices
	b.log.WithField("overrides", prices.Len()).Info("prices updated")
	return prices, nil
}

// Reset deletes every transaction and price override.
func (b *Book) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.Reset(ctx); err != nil {
		return fmt.Errorf("could not reset: %w", err)
	}
	b.ledger = NewLedger()
	b.prices = PriceOverrides{}
	b.log.Warn("portfolio reset")
	return nil
}

// Export returns a backup of the current inputs.
func (b *Book) Export() Backup {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return NewBackup(b.ledger.All(), b.rates, b.prices)
}

// Import replaces the whole portfolio with the backup content. Transactions
// without an ID get a new one. The backup is checked with CheckLog first. If
// the store fails midway, the previous content is restored and the Book is
// left unchanged.
func (b *Book) Import(ctx context.Context, backup Backup) error {
	txs := make([]Transaction, len(backup.Transactions))
	for i, tx := range backup.Transactions {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		txs[i] = tx
	}
	if err := CheckLog(txs); err != nil {
		return fmt.Errorf("invalid backup: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.ledger.All()
	if err := b.replaceLog(ctx, txs); err != nil {
		return b.rollback(ctx, old, fmt.Errorf("could not import transactions: %w", err))
	}
	if err := b.store.SaveRates(ctx, backup.Rates); err != nil {
		return b.rollback(ctx, old, fmt.Errorf("could not import rates: %w", err))
	}
	if err := b.store.SavePrices(ctx, backup.Prices); err != nil {
		return b.rollback(ctx, old, fmt.Errorf("could not import prices: %w", err))
	}
	b.ledger, b.rates, b.prices = NewLedger(txs...), backup.Rates, backup.Prices
	b.log.WithField("transactions", len(txs)).Info("backup imported")
	return nil
}

// replaceLog stores txs in place of the log, atomically when the store
// supports it.
func (b *Book) replaceLog(ctx context.Context, txs []Transaction) error {
	if r, ok := b.store.(LogReplacer); ok {
		return r.ReplaceLog(ctx, txs)
	}
	if err := b.store.Reset(ctx); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := b.store.Add(ctx, tx); err != nil {
			return fmt.Errorf("transaction %s: %w", tx, err)
		}
	}
	return nil
}

// rollback writes back the content the Book still holds after a failed
// import and returns cause, joined with the rollback failure if any.
func (b *Book) rollback(ctx context.Context, old []Transaction, cause error) error {
	err := b.replaceLog(ctx, old)
	if err == nil {
		err = b.store.SaveRates(ctx, b.rates)
	}
	if err == nil {
		err = b.store.SavePrices(ctx, b.prices)
	}
	if err != nil {
		b.log.WithError(err).Error("could not restore the portfolio after a failed import")
		return errors.Join(cause, fmt.Errorf("could not restore the previous portfolio: %w", err))
	}
	b.log.WithError(cause).Warn("import failed, previous portfolio restored")
	return cause
}

// Summarize asks s for a commentary on the n largest holdings. A failure
// does not affect the Book; the error wraps ErrStale.
func (b *Book) Summarize(ctx context.Context, s Summarizer, n int) (string, error) {
	text, err := s.Summarize(ctx, b.Snapshot().Digest(n))
	if err != nil {
		err = errors.Join(fmt.Errorf("summary unavailable: %w", err), ErrStale)
		b.log.WithError(err).Warn("summarizer failed")
		return "", err
	}
	return text, nil
}

// Unlock checks pin against the stored one. When no PIN was ever set, pin
// becomes the PIN: of concurrent first unlocks, only one sets it.
func (b *Book) Unlock(ctx context.Context, pin string) error {
	hash, err := b.store.PIN(ctx)
	if err != nil {
		return fmt.Errorf("could not read PIN: %w", err)
	}
	if hash != "" {
		return CheckPIN(hash, pin)
	}

	b.pinMu.Lock()
	defer b.pinMu.Unlock()
	// another unlock may have set it meanwhile
	if hash, err = b.store.PIN(ctx); err != nil {
		return fmt.Errorf("could not read PIN: %w", err)
	}
	if hash != "" {
		return CheckPIN(hash, pin)
	}
	return b.savePIN(ctx, pin)
}

// HasPIN reports whether a PIN was set.
func (b *Book) HasPIN(ctx context.Context) (bool, error) {
	hash, err := b.store.PIN(ctx)
	if err != nil {
		return false, fmt.Errorf("could not read PIN: %w", err)
	}
	return hash != "", nil
}

// SetPIN replaces the PIN.
func (b *Book) SetPIN(ctx context.Context, pin string) error {
	b.pinMu.Lock()
	defer b.pinMu.Unlock()
	return b.savePIN(ctx, pin)
}

func (b *Book) savePIN(ctx context.Context, pin string) error {
	hash, err := HashPIN(pin)
	if err != nil {
		return err
	}
	if err := b.store.SavePIN(ctx, hash); err != nil {
		return fmt.Errorf("could not store PIN: %w", err)
	}
	b.log.Info("PIN updated")
	return nil
}
