package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/portfoy/portfolio"
)

// File names inside a File store directory.
const (
	TransactionsFile = "transactions.jsonl"
	RatesFile        = "rates.json"
	PricesFile       = "prices.json"
	PINFile          = "pin"
)

// File is a Store backed by a directory.
type File struct {
	dir      string
	defaults portfolio.RateTable
	mu       sync.Mutex
}

// NewFile returns a store in dir, creating it if needed.
func NewFile(dir string, opts ...Option) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory %q: %w", dir, err)
	}
	return &File{dir: dir, defaults: newOptions(opts).rates}, nil
}

func (f *File) path(name string) string { return filepath.Join(f.dir, name) }

// Transactions reads the log. A missing file is an empty log.
func (f *File) Transactions(context.Context) ([]portfolio.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, err := f.ledger()
	if err != nil {
		return nil, err
	}
	return ledger.All(), nil
}

func (f *File) ledger() (*portfolio.Ledger, error) {
	file, err := os.Open(f.path(TransactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return portfolio.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file: %w", err)
	}
	defer file.Close()
	ledger, err := portfolio.DecodeLedger(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", file.Name(), err)
	}
	return ledger, nil
}

// Add appends tx at the end of the log file.
func (f *File) Add(_ context.Context, tx portfolio.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.OpenFile(f.path(TransactionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening ledger file for writing: %w", err)
	}
	if err := portfolio.EncodeTransaction(file, tx); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Replace rewrites the log with tx in place of the transaction with the same ID.
func (f *File) Replace(_ context.Context, tx portfolio.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, err := f.ledger()
	if err != nil {
		return err
	}
	if err := ledger.Replace(tx); err != nil {
		return err
	}
	return f.saveLedger(ledger)
}

// Delete rewrites the log without the transaction id.
func (f *File) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, err := f.ledger()
	if err != nil {
		return err
	}
	if _, err := ledger.Delete(id); err != nil {
		return err
	}
	return f.saveLedger(ledger)
}

// ReplaceLog writes txs as the new log. The file is replaced in one rename,
// so a failure keeps the previous log.
func (f *File) ReplaceLog(_ context.Context, txs []portfolio.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLedger(portfolio.NewLedger(txs...))
}

// Format rewrites the log in canonical form and date order. Transactions
// written by hand without an ID get one. It returns the number of
// transactions.
func (f *File) Format(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, err := f.ledger()
	if err != nil {
		return 0, err
	}
	txs := ledger.All()
	for i, tx := range txs {
		if tx.ID == "" {
			txs[i] = tx.WithID(uuid.NewString())
		}
	}
	return len(txs), f.saveLedger(portfolio.NewLedger(txs...))
}

func (f *File) saveLedger(ledger *portfolio.Ledger) error {
	var buf bytes.Buffer
	if err := portfolio.EncodeLedger(&buf, ledger); err != nil {
		return err
	}
	return f.write(TransactionsFile, buf.Bytes())
}

// Rates reads the rate table, the default rates if it was never saved.
func (f *File) Rates(context.Context) (portfolio.RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rates := f.defaults
	if err := f.readJSON(RatesFile, &rates); err != nil {
		return portfolio.RateTable{}, err
	}
	return rates, nil
}

func (f *File) SaveRates(_ context.Context, rates portfolio.RateTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeJSON(RatesFile, rates)
}

// Prices reads the overrides, none if they were never saved.
func (f *File) Prices(context.Context) (portfolio.PriceOverrides, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var prices portfolio.PriceOverrides
	if err := f.readJSON(PricesFile, &prices); err != nil {
		return portfolio.PriceOverrides{}, err
	}
	return prices, nil
}

func (f *File) SavePrices(_ context.Context, prices portfolio.PriceOverrides) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeJSON(PricesFile, prices)
}

func (f *File) PIN(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(PINFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read PIN: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *File) SavePIN(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(PINFile, []byte(hash+"\n"))
}

// Reset removes the log and the price overrides.
func (f *File) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range []string{TransactionsFile, PricesFile} {
		if err := os.Remove(f.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not remove %s: %w", name, err)
		}
	}
	return nil
}

// readJSON decodes a file into v, leaving v untouched if the file does not exist.
func (f *File) readJSON(name string, v any) error {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not decode %s: %w", name, err)
	}
	return nil
}

func (f *File) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", name, err)
	}
	return f.write(name, append(data, '\n'))
}

// write replaces a file atomically.
func (f *File) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, name+".*")
	if err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name)); err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	return nil
}

var (
	_ portfolio.Store       = (*File)(nil)
	_ portfolio.LogReplacer = (*File)(nil)
)
