package portfolio

// PriceSource tells where a position's current price comes from.
type PriceSource string

const (
	FromOverride    PriceSource = "override"     // entered by hand
	FromLastTrade   PriceSource = "last-trade"   // price of the latest transaction
	FromAverageCost PriceSource = "average-cost" // no price known, valued at cost
)

// Position is the state of one symbol after replaying the log.
//
// Native figures are in the position's currency, which is the currency of
// the first transaction on the symbol. Domestic figures are converted with
// the rate table the snapshot was computed with.
type Position struct {
	Symbol   string
	Asset    AssetType
	Currency Currency

	Amount     Quantity // never negative
	TotalCost  Money    // cost basis of the units held, never negative
	AvgCost    Money    // TotalCost/Amount, zero when nothing is held
	RealizedPL Money

	CurrentPrice        Money
	PriceSource         PriceSource
	CurrentValue        Money
	UnrealizedPL        Money
	UnrealizedPLPercent Percent // zero when TotalCost is zero

	CurrentValueDomestic Money
	UnrealizedPLDomestic Money
	RealizedPLDomestic   Money

	lastTrade Money
	traded    bool
}

func newPosition(symbol string, asset AssetType, currency Currency) *Position {
	zero := M(0, currency)
	return &Position{
		Symbol:     symbol,
		Asset:      asset,
		Currency:   currency,
		TotalCost:  zero,
		AvgCost:    zero,
		RealizedPL: zero,
	}
}

// IsHeld reports whether some units are held.
func (p Position) IsHeld() bool { return p.Amount.IsPositive() }

// IsExited reports whether the position was fully sold with a realized result.
func (p Position) IsExited() bool { return !p.IsHeld() && !p.RealizedPL.IsZero() }

// acquire books a buy of q units at unit price.
func (p *Position) acquire(q Quantity, price Money) {
	price = price.In(p.Currency)
	p.TotalCost = p.TotalCost.Add(price.Mul(q))
	p.Amount = p.Amount.Add(q)
	if p.Amount.IsPositive() {
		p.AvgCost = p.TotalCost.Div(p.Amount)
	}
	p.lastTrade, p.traded = price, true
}

// dispose books a sell of q units at unit price, at the pre-sale average cost.
func (p *Position) dispose(q Quantity, price Money) {
	price = price.In(p.Currency)
	costOfSold := p.AvgCost.Mul(q)
	p.RealizedPL = p.RealizedPL.Add(price.Mul(q).Sub(costOfSold))
	p.Amount = p.Amount.Sub(q)
	p.TotalCost = p.TotalCost.Sub(costOfSold)
	if !p.Amount.IsPositive() {
		zero := M(0, p.Currency)
		p.Amount, p.TotalCost, p.AvgCost = Q(0), zero, zero
	} else if p.TotalCost.IsNegative() {
		p.TotalCost = M(0, p.Currency)
	}
	p.lastTrade, p.traded = price, true
}

// value resolves the current price and fills the valuation fields.
func (p *Position) value(rates RateTable, prices PriceOverrides) {
	switch override, ok := prices.Price(p.Symbol); {
	case ok:
		p.CurrentPrice, p.PriceSource = M(override, p.Currency), FromOverride
	case p.traded:
		p.CurrentPrice, p.PriceSource = p.lastTrade, FromLastTrade
	default:
		p.CurrentPrice, p.PriceSource = p.AvgCost, FromAverageCost
	}

	p.CurrentValue = p.CurrentPrice.Mul(p.Amount)
	p.UnrealizedPL = p.CurrentValue.Sub(p.TotalCost)
	p.UnrealizedPLPercent = percentOf(p.UnrealizedPL.value, p.TotalCost.value)

	p.CurrentValueDomestic = rates.Convert(p.CurrentValue)
	p.UnrealizedPLDomestic = rates.Convert(p.UnrealizedPL)
	p.RealizedPLDomestic = rates.Convert(p.RealizedPL)
}
