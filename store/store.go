// Package store persists the inputs of a portfolio valuation: the
// transaction log, the rate table, the price overrides and the PIN hash.
//
// Two implementations of portfolio.Store are provided. File keeps a
// directory of plain files, the transaction log being a JSONL file that can
// be edited by hand. SQLite keeps everything in a single database file.
package store

import (
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
)

// Open returns the store for a data source name: "sqlite:<path>" opens a
// database, anything else is a directory for File.
func Open(dsn string, opts ...Option) (portfolio.Store, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		s, err := OpenSQLite(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("could not open database %q: %w", path, err)
		}
		return s, nil
	}
	return NewFile(dsn, opts...)
}

// Option configures a store.
type Option func(*options)

type options struct {
	rates portfolio.RateTable
}

// WithDefaultRates sets the rates read until rates are saved,
// portfolio.DefaultRates otherwise.
func WithDefaultRates(r portfolio.RateTable) Option { return func(o *options) { o.rates = r } }

func newOptions(opts []Option) options {
	o := options{rates: portfolio.DefaultRates()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
