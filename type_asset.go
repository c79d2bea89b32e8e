package portfolio

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetType classifies what a symbol is. The set is closed.
type AssetType string

const (
	Stock   AssetType = "stock"    // domestic equity
	StockUS AssetType = "stock_us" // foreign equity
	Crypto  AssetType = "crypto"
	Gold    AssetType = "gold" // precious metal
	Forex   AssetType = "forex"
	Fund    AssetType = "fund"
	Cash    AssetType = "cash"
)

var assetTypes = []AssetType{Stock, StockUS, Crypto, Gold, Forex, Fund, Cash}

// AssetTypes lists every asset type in display order.
func AssetTypes() []AssetType { return append([]AssetType(nil), assetTypes...) }

// ParseAssetType parses an asset type identifier.
func ParseAssetType(s string) (AssetType, error) {
	a := AssetType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range assetTypes {
		if t == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAsset, s)
}

// DefaultCurrency returns the currency transactions of this asset type are
// settled in when none is given.
func (a AssetType) DefaultCurrency() Currency {
	switch a {
	case StockUS, Crypto:
		return USD
	default:
		return Domestic
	}
}

// Label is a human readable name.
func (a AssetType) Label() string {
	switch a {
	case Stock:
		return "Domestic equity"
	case StockUS:
		return "Foreign equity"
	case Crypto:
		return "Crypto"
	case Gold:
		return "Precious metal"
	case Forex:
		return "Currency"
	case Fund:
		return "Fund"
	case Cash:
		return "Cash"
	}
	return string(a)
}

func (a AssetType) String() string { return string(a) }

func (a *AssetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseAssetType(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
