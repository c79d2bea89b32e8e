package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// BackupVersion is the version written by EncodeBackup.
const BackupVersion = 1

// Backup is the content of a single-file export: the whole log and both
// tables. It is meant to be read back by DecodeBackup.
type Backup struct {
	Version      int
	Exported     Date
	Transactions []Transaction
	Rates        RateTable
	Prices       PriceOverrides
}

// NewBackup bundles the three inputs of a valuation.
func NewBackup(txs []Transaction, rates RateTable, prices PriceOverrides) Backup {
	return Backup{Version: BackupVersion, Exported: Today(), Transactions: txs, Rates: rates, Prices: prices}
}

// EncodeBackup writes b as indented JSON.
func EncodeBackup(w io.Writer, b Backup) error {
	var o jsonObjectWriter
	o.Append("version", b.Version)
	o.Append("exported", b.Exported)
	txs := b.Transactions
	if txs == nil {
		txs = []Transaction{}
	}
	o.Append("transactions", txs)
	o.Append("rates", b.Rates)
	o.Append("prices", b.Prices)
	data, err := o.MarshalJSON()
	if err != nil {
		return fmt.Errorf("could not encode backup: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(json.RawMessage(data))
}

// DecodeBackup reads a backup. The transactions are checked together with
// CheckLog and all the failures are reported. Transactions without an ID are
// returned as is, the caller assigns one when admitting them.
func DecodeBackup(r io.Reader) (Backup, error) {
	var raw struct {
		Version      int               `json:"version"`
		Exported     Date              `json:"exported"`
		Transactions []json.RawMessage `json:"transactions"`
		Rates        *RateTable        `json:"rates"`
		Prices       *PriceOverrides   `json:"prices"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Backup{}, fmt.Errorf("could not decode backup: %w", err)
	}
	if raw.Version > BackupVersion {
		return Backup{}, fmt.Errorf("unsupported backup version %d", raw.Version)
	}

	b := Backup{Version: raw.Version, Exported: raw.Exported, Rates: DefaultRates()}
	if raw.Rates != nil {
		b.Rates = *raw.Rates
	}
	if raw.Prices != nil {
		b.Prices = *raw.Prices
	}

	var errs []error
	for i, data := range raw.Transactions {
		var tx Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			errs = append(errs, fmt.Errorf("transaction #%d: %w", i+1, err))
			continue
		}
		b.Transactions = append(b.Transactions, tx)
	}
	if err := errors.Join(errs...); err != nil {
		return Backup{}, err
	}
	if err := CheckLog(b.Transactions); err != nil {
		return Backup{}, err
	}
	return b, nil
}
