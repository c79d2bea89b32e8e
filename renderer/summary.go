package renderer

import (
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
)

// TopHoldings is the number of holdings shown on the summary.
const TopHoldings = 5

// SummaryMarkdown renders the dashboard: totals, largest holdings and
// allocation per asset type.
func SummaryMarkdown(s *portfolio.Snapshot) string {
	net := s.NetContribution()
	if s.ContributionMode() == portfolio.NetRecovered {
		net = net.Neg()
	}
	return renderTemplate("summary.md", struct {
		*portfolio.Snapshot
		Net    portfolio.Money
		Top    []portfolio.Position
		Others int
	}{
		Snapshot: s,
		Net:      net,
		Top:      s.Top(TopHoldings),
		Others:   max(0, len(s.Holdings())-TopHoldings),
	})
}

// AllocationMarkdown renders the share of each asset type.
func AllocationMarkdown(allocation []portfolio.Allocation) string {
	var b strings.Builder
	if len(allocation) == 0 {
		return ""
	}
	t := newTable(&b, "lrr", "Asset", "Value (TRY)", "Share")
	for _, a := range allocation {
		t.row(a.Asset.Label(), a.Value.String(), a.Share.String())
	}
	return b.String()
}

// RatesMarkdown renders the rate table.
func RatesMarkdown(r portfolio.RateTable) string {
	var b strings.Builder
	t := newTable(&b, "lr", "Currency", "Rate ("+string(portfolio.Domestic)+")")
	for _, c := range portfolio.Currencies() {
		if c.IsDomestic() {
			continue
		}
		t.row(string(c), r.Rate(c).StringFixed(4))
	}
	return b.String()
}

// PricesMarkdown renders the price overrides.
func PricesMarkdown(p portfolio.PriceOverrides) string {
	var b strings.Builder
	if p.Len() == 0 {
		fmt.Fprintln(&b, "No prices entered by hand.")
		return b.String()
	}
	t := newTable(&b, "lr", "Symbol", "Price")
	for _, symbol := range p.Symbols() {
		v, _ := p.Price(symbol)
		t.row(symbol, v.String())
	}
	return b.String()
}

// DigestMarkdown renders the digest sent to a summarizer.
func DigestMarkdown(d portfolio.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total value: %s\n", d.TotalValue)
	fmt.Fprintf(&b, "Total P/L: %s\n", d.TotalPL.SignedString())
	fmt.Fprintf(&b, "Net contribution: %s\n\n", d.NetContribution)
	if len(d.Holdings) == 0 {
		return b.String()
	}
	t := newTable(&b, "lrr", "Symbol", "Value (TRY)", "Unrealized")
	for _, l := range d.Holdings {
		t.row(l.Symbol, l.Value.String(), l.UnrealizedPLPercent.SignedString())
	}
	return b.String()
}
