package portfolio

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdBuy  CommandType = "buy"
	CmdSell CommandType = "sell"
)

// ParseCommand parses "buy" or "sell".
func ParseCommand(s string) (CommandType, error) {
	switch c := CommandType(strings.ToLower(strings.TrimSpace(s))); c {
	case CmdBuy, CmdSell:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

func (c CommandType) String() string { return string(c) }

func (c *CommandType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseCommand(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Transaction is one admitted trade. It is a value: edits replace the whole
// record under the same ID.
type Transaction struct {
	ID      string
	Command CommandType
	Date    Date
	Asset   AssetType
	Symbol  string   // always upper case
	Amount  Quantity // units traded, strictly positive
	Price   Money    // unit price, in the transaction currency
	Note    string
}

// NewBuy creates a new buy transaction. It does not validate it, see [Admit].
func NewBuy(day Date, asset AssetType, symbol string, amount Quantity, price Money) Transaction {
	return Transaction{Command: CmdBuy, Date: day, Asset: asset, Symbol: strings.ToUpper(symbol), Amount: amount, Price: price}
}

// NewSell creates a new sell transaction. It does not validate it, see [Admit].
func NewSell(day Date, asset AssetType, symbol string, amount Quantity, price Money) Transaction {
	return Transaction{Command: CmdSell, Date: day, Asset: asset, Symbol: strings.ToUpper(symbol), Amount: amount, Price: price}
}

// WithID returns a copy of t with the given ID.
func (t Transaction) WithID(id string) Transaction {
	t.ID = id
	return t
}

// WithNote returns a copy of t with the given note.
func (t Transaction) WithNote(note string) Transaction {
	t.Note = note
	return t
}

// Currency returns the settlement currency.
func (t Transaction) Currency() Currency { return t.Price.Currency() }

// Total returns amount*price in the transaction currency.
func (t Transaction) Total() Money { return t.Price.Mul(t.Amount) }

// Equal reports whether both transactions carry the same data.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Command == o.Command && t.Date == o.Date && t.Asset == o.Asset &&
		t.Symbol == o.Symbol && t.Amount.Equal(o.Amount) && t.Price.Equal(o.Price) && t.Note == o.Note
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", t.Date, t.Command, t.Amount, t.Symbol, t.Price)
}

// MarshalJSON writes the transaction with a stable key order and full
// decimal precision.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("date", t.Date)
	w.Append("type", t.Command)
	w.Append("assetType", t.Asset)
	w.Append("symbol", t.Symbol)
	w.Append("amount", t.Amount)
	w.Append("price", t.Price.value)
	w.Append("currency", t.Price.cur)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a transaction. Amount and price may be JSON numbers or
// numeric strings. A missing currency defaults to the asset type's one.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID       string          `json:"id"`
		Date     Date            `json:"date"`
		Command  CommandType     `json:"type"`
		Asset    AssetType       `json:"assetType"`
		Symbol   string          `json:"symbol"`
		Amount   decimal.Decimal `json:"amount"`
		Price    decimal.Decimal `json:"price"`
		Currency Currency        `json:"currency"`
		Note     string          `json:"note"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if temp.Currency == "" {
		temp.Currency = temp.Asset.DefaultCurrency()
	}
	*t = Transaction{
		ID:      temp.ID,
		Command: temp.Command,
		Date:    temp.Date,
		Asset:   temp.Asset,
		Symbol:  strings.ToUpper(strings.TrimSpace(temp.Symbol)),
		Amount:  Q(temp.Amount),
		Price:   M(temp.Price, temp.Currency),
		Note:    temp.Note,
	}
	return nil
}
