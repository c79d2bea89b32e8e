package portfolio

import (
	"cmp"
	"slices"
	"strings"
)

// Snapshot is the valuation of a portfolio, computed by [Compute].
// Aggregates are in the domestic currency. A Snapshot is never modified
// after it is returned; accessors return copies.
type Snapshot struct {
	rates     RateTable
	order     []string   // symbols in order of first trade
	positions []Position // same order

	totalValue        Money
	totalUnrealizedPL Money
	totalRealizedPL   Money
	totalInvested     Money
	totalWithdrawn    Money
}

// aggregate computes the portfolio totals from the valued positions.
func (s *Snapshot) aggregate() {
	s.totalValue = s.sum(s.Holdings(), func(p Position) Money { return p.CurrentValueDomestic })
	s.totalUnrealizedPL = s.sum(s.Holdings(), func(p Position) Money { return p.UnrealizedPLDomestic })
	s.totalRealizedPL = s.sum(s.positions, func(p Position) Money { return p.RealizedPLDomestic })
}

// sum applies metric to every position and adds the results.
func (s *Snapshot) sum(positions []Position, metric func(Position) Money) Money {
	total := M(0, Domestic)
	for _, p := range positions {
		total = total.Add(metric(p))
	}
	return total
}

// Rates returns the rate table the snapshot was computed with.
func (s *Snapshot) Rates() RateTable { return s.rates }

// Positions returns every symbol ever traded, in order of first trade.
func (s *Snapshot) Positions() []Position { return slices.Clone(s.positions) }

// Holdings returns the positions with units currently held.
func (s *Snapshot) Holdings() []Position {
	return s.filter(func(p Position) bool { return p.IsHeld() })
}

// History returns the held positions and the exited ones with a non zero
// realized result.
func (s *Snapshot) History() []Position {
	return s.filter(func(p Position) bool { return p.IsHeld() || p.IsExited() })
}

func (s *Snapshot) filter(accept func(Position) bool) []Position {
	res := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		if accept(p) {
			res = append(res, p)
		}
	}
	return res
}

// Position returns the position on symbol.
func (s *Snapshot) Position(symbol string) (Position, bool) {
	i := slices.Index(s.order, canonical(symbol))
	if i < 0 {
		return Position{}, false
	}
	return s.positions[i], true
}

// TotalValue is the domestic value of the holdings.
func (s *Snapshot) TotalValue() Money { return s.totalValue }

// TotalUnrealizedPL is the unrealized result of the holdings.
func (s *Snapshot) TotalUnrealizedPL() Money { return s.totalUnrealizedPL }

// TotalRealizedPL is the realized result of every position ever held.
func (s *Snapshot) TotalRealizedPL() Money { return s.totalRealizedPL }

// TotalPL is the sum of unrealized and realized results.
func (s *Snapshot) TotalPL() Money { return s.totalUnrealizedPL.Add(s.totalRealizedPL) }

// TotalInvested is the cash spent on buys.
func (s *Snapshot) TotalInvested() Money { return s.totalInvested }

// TotalWithdrawn is the cash received from sells.
func (s *Snapshot) TotalWithdrawn() Money { return s.totalWithdrawn }

// NetContribution is TotalInvested minus TotalWithdrawn.
func (s *Snapshot) NetContribution() Money { return s.totalInvested.Sub(s.totalWithdrawn) }

// ContributionMode tells how NetContribution should be presented.
type ContributionMode int

const (
	// NetCost means the holder still has cash in the portfolio.
	NetCost ContributionMode = iota
	// NetRecovered means the holder took out at least what was put in.
	NetRecovered
)

func (m ContributionMode) String() string {
	if m == NetRecovered {
		return "Net cash recovered"
	}
	return "Net cost"
}

// ContributionMode returns NetRecovered when the net contribution is zero or less.
func (s *Snapshot) ContributionMode() ContributionMode {
	if s.NetContribution().IsPositive() {
		return NetCost
	}
	return NetRecovered
}

// byValue orders positions by decreasing domestic value, then by symbol.
func byValue(a, b Position) int {
	if c := b.CurrentValueDomestic.value.Cmp(a.CurrentValueDomestic.value); c != 0 {
		return c
	}
	return cmp.Compare(a.Symbol, b.Symbol)
}

// Top returns the n largest holdings by domestic value. n <= 0 means all.
func (s *Snapshot) Top(n int) []Position {
	h := s.Holdings()
	slices.SortStableFunc(h, byValue)
	if n > 0 && n < len(h) {
		h = h[:n]
	}
	return h
}

// Search returns the History positions whose symbol contains term, ignoring case.
func (s *Snapshot) Search(term string) []Position {
	term = canonical(term)
	return s.filter(func(p Position) bool {
		return (p.IsHeld() || p.IsExited()) && strings.Contains(p.Symbol, term)
	})
}

// Allocation is the share of the portfolio value held in one asset type.
type Allocation struct {
	Asset AssetType
	Value Money // domestic
	Share Percent
}

// Allocation groups the holdings by asset type, largest first.
func (s *Snapshot) Allocation() []Allocation {
	values := make(map[AssetType]Money)
	for _, p := range s.Holdings() {
		v, ok := values[p.Asset]
		if !ok {
			v = M(0, Domestic)
		}
		values[p.Asset] = v.Add(p.CurrentValueDomestic)
	}
	res := make([]Allocation, 0, len(values))
	for _, a := range AssetTypes() {
		v, ok := values[a]
		if !ok {
			continue
		}
		res = append(res, Allocation{Asset: a, Value: v, Share: percentOf(v.value, s.totalValue.value)})
	}
	slices.SortStableFunc(res, func(a, b Allocation) int { return b.Value.value.Cmp(a.Value.value) })
	return res
}

// Digest is the condensed view of a snapshot handed to a narrative summarizer.
type Digest struct {
	Holdings        []DigestLine
	TotalValue      Money
	TotalPL         Money
	NetContribution Money
}

// DigestLine summarizes one holding.
type DigestLine struct {
	Symbol              string
	Value               Money // domestic
	UnrealizedPLPercent Percent
}

// Digest condenses the snapshot to its n largest holdings and the totals.
func (s *Snapshot) Digest(n int) Digest {
	d := Digest{
		TotalValue:      s.TotalValue(),
		TotalPL:         s.TotalPL(),
		NetContribution: s.NetContribution(),
	}
	for _, p := range s.Top(n) {
		d.Holdings = append(d.Holdings, DigestLine{Symbol: p.Symbol, Value: p.CurrentValueDomestic, UnrealizedPLPercent: p.UnrealizedPLPercent})
	}
	return d
}
