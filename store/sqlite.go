package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/portfoy/portfolio"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	date TEXT NOT NULL,
	type TEXT NOT NULL,
	asset_type TEXT NOT NULL,
	symbol TEXT NOT NULL,
	amount TEXT NOT NULL,
	price TEXT NOT NULL,
	currency TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS transactions_symbol ON transactions(symbol);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Keys of the settings table.
const (
	ratesKey  = "rates"
	pricesKey = "prices"
	pinKey    = "pin"
)

// SQLite is a Store backed by a SQLite database. Amounts and prices are
// stored as decimal text to keep their exact value.
type SQLite struct {
	db       *sql.DB
	defaults portfolio.RateTable
}

// OpenSQLite opens (or creates) the database at path and ensures its tables.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive and serializes writes
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLite{db: db, defaults: newOptions(opts).rates}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Transactions(ctx context.Context) ([]portfolio.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, type, asset_type, symbol, amount, price, currency, note FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	defer rows.Close()

	var txs []portfolio.Transaction
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.date, &r.command, &r.asset, &r.symbol, &r.amount, &r.price, &r.currency, &r.note); err != nil {
			return nil, fmt.Errorf("could not scan transaction: %w", err)
		}
		tx, err := r.transaction()
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", r.id, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read transactions: %w", err)
	}
	return portfolio.NewLedger(txs...).All(), nil
}

// row is a transactions record as stored.
type row struct {
	id, date, command, asset, symbol, amount, price, currency, note string
}

func (r row) transaction() (portfolio.Transaction, error) {
	on, err1 := portfolio.ParseDate(r.date)
	cmd, err2 := portfolio.ParseCommand(r.command)
	asset, err3 := portfolio.ParseAssetType(r.asset)
	cur, err4 := portfolio.ParseCurrency(r.currency)
	amount, err5 := portfolio.ParseQuantity(r.amount)
	price, err6 := portfolio.ParseMoney(r.price, cur)
	if err := errors.Join(err1, err2, err3, err4, err5, err6); err != nil {
		return portfolio.Transaction{}, err
	}
	tx := portfolio.Transaction{
		ID:      r.id,
		Command: cmd,
		Date:    on,
		Asset:   asset,
		Symbol:  r.symbol,
		Amount:  amount,
		Price:   price,
		Note:    r.note,
	}
	return tx, portfolio.Validate(tx)
}

const insertTransaction = `INSERT INTO transactions (id, date, type, asset_type, symbol, amount, price, currency, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, tx portfolio.Transaction) error {
	_, err := db.ExecContext(ctx, insertTransaction,
		tx.ID, tx.Date.String(), string(tx.Command), string(tx.Asset), tx.Symbol, tx.Amount.String(), tx.Price.Decimal().String(), string(tx.Currency()), tx.Note)
	if err != nil {
		return fmt.Errorf("could not insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *SQLite) Add(ctx context.Context, tx portfolio.Transaction) error {
	return insert(ctx, s.db, tx)
}

// ReplaceLog deletes the log and inserts txs in a single database
// transaction.
func (s *SQLite) ReplaceLog(ctx context.Context, txs []portfolio.Transaction) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbtx.Rollback()
	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("could not delete transactions: %w", err)
	}
	for _, tx := range portfolio.NewLedger(txs...).All() {
		if err := insert(ctx, dbtx, tx); err != nil {
			return err
		}
	}
	return dbtx.Commit()
}

// Replace updates the transaction in place, keeping its position in the log.
func (s *SQLite) Replace(ctx context.Context, tx portfolio.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, type = ?, asset_type = ?, symbol = ?, amount = ?, price = ?, currency = ?, note = ? WHERE id = ?`,
		tx.Date.String(), string(tx.Command), string(tx.Asset), tx.Symbol, tx.Amount.String(), tx.Price.Decimal().String(), string(tx.Currency()), tx.Note, tx.ID)
	if err != nil {
		return fmt.Errorf("could not update transaction %s: %w", tx.ID, err)
	}
	return expectOne(res, tx.ID)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete transaction %s: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", portfolio.ErrNotFound, id)
	}
	return nil
}

// Rates reads the rate table, the default rates if it was never saved.
func (s *SQLite) Rates(ctx context.Context) (portfolio.RateTable, error) {
	rates := s.defaults
	if err := s.get(ctx, ratesKey, &rates); err != nil {
		return portfolio.RateTable{}, err
	}
	return rates, nil
}

func (s *SQLite) SaveRates(ctx context.Context, rates portfolio.RateTable) error {
	return s.putJSON(ctx, ratesKey, rates)
}

func (s *SQLite) Prices(ctx context.Context) (portfolio.PriceOverrides, error) {
	var prices portfolio.PriceOverrides
	if err := s.get(ctx, pricesKey, &prices); err != nil {
		return portfolio.PriceOverrides{}, err
	}
	return prices, nil
}

func (s *SQLite) SavePrices(ctx context.Context, prices portfolio.PriceOverrides) error {
	return s.putJSON(ctx, pricesKey, prices)
}

func (s *SQLite) PIN(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, pinKey).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read PIN: %w", err)
	}
	return hash, nil
}

func (s *SQLite) SavePIN(ctx context.Context, hash string) error {
	return s.put(ctx, pinKey, hash)
}

// Reset deletes the log and the price overrides in a single transaction.
func (s *SQLite) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("could not delete transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, pricesKey); err != nil {
		return fmt.Errorf("could not delete prices: %w", err)
	}
	return tx.Commit()
}

// get decodes the JSON setting key into v, leaving v untouched if it is absent.
func (s *SQLite) get(ctx context.Context, key string, v any) error {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("could not decode %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", key, err)
	}
	return s.put(ctx, key, string(data))
}

func (s *SQLite) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("could not save %s: %w", key, err)
	}
	return nil
}

var (
	_ portfolio.Store       = (*SQLite)(nil)
	_ portfolio.LogReplacer = (*SQLite)(nil)
)
