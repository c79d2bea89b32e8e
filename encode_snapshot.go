package portfolio

import "encoding/json"

// MarshalJSON writes a position with native and domestic figures.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", p.Symbol)
	w.Append("assetType", p.Asset)
	w.Append("currency", p.Currency)
	w.Append("amount", p.Amount)
	w.Append("totalCost", p.TotalCost.value)
	w.Append("avgCost", p.AvgCost.value)
	w.Append("realizedPL", p.RealizedPL.value)
	w.Append("currentPrice", p.CurrentPrice.value)
	w.Append("priceSource", p.PriceSource)
	w.Append("currentValue", p.CurrentValue.value)
	w.Append("unrealizedPL", p.UnrealizedPL.value)
	w.Append("unrealizedPLPercent", float64(p.UnrealizedPLPercent))
	w.Append("currentValueDomestic", p.CurrentValueDomestic.value)
	w.Append("unrealizedPLDomestic", p.UnrealizedPLDomestic.value)
	w.Append("realizedPLDomestic", p.RealizedPLDomestic.value)
	return w.MarshalJSON()
}

// MarshalJSON writes the totals, the holdings and the history of the snapshot.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", Domestic)
	w.Append("totalValue", s.TotalValue().value)
	w.Append("totalUnrealizedPL", s.TotalUnrealizedPL().value)
	w.Append("totalRealizedPL", s.TotalRealizedPL().value)
	w.Append("totalPL", s.TotalPL().value)
	w.Append("totalInvested", s.TotalInvested().value)
	w.Append("totalWithdrawn", s.TotalWithdrawn().value)
	w.Append("netContribution", s.NetContribution().value)
	w.Append("contributionMode", s.ContributionMode().String())
	w.Append("rates", s.rates)
	w.Append("holdings", nonNil(s.Holdings()))
	w.Append("history", nonNil(s.History()))
	return w.MarshalJSON()
}

func nonNil(p []Position) []Position {
	if p == nil {
		return []Position{}
	}
	return p
}

// MarshalJSON writes the digest with values rounded to the minor unit.
func (d Digest) MarshalJSON() ([]byte, error) {
	type line struct {
		Symbol              string  `json:"symbol"`
		Value               float64 `json:"value"`
		UnrealizedPLPercent float64 `json:"unrealizedPLPercent"`
	}
	lines := make([]line, 0, len(d.Holdings))
	for _, h := range d.Holdings {
		lines = append(lines, line{
			Symbol:              h.Symbol,
			Value:               h.Value.value.Round(2).InexactFloat64(),
			UnrealizedPLPercent: float64(h.UnrealizedPLPercent),
		})
	}
	var w jsonObjectWriter
	w.Append("holdings", lines)
	w.Append("totalValue", d.TotalValue.value.Round(2))
	w.Append("totalPL", d.TotalPL.value.Round(2))
	w.Append("netContribution", d.NetContribution.value.Round(2))
	return w.MarshalJSON()
}

var (
	_ json.Marshaler = Position{}
	_ json.Marshaler = (*Snapshot)(nil)
	_ json.Marshaler = Digest{}
)
