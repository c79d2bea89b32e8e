package renderer

import (
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
)

// HoldingsMarkdown renders the currently held positions. Prices that were
// entered by hand are starred, prices that fell back to the average cost
// are marked with a dagger.
func HoldingsMarkdown(positions []portfolio.Position) string {
	var b strings.Builder
	if len(positions) == 0 {
		fmt.Fprintln(&b, "No holdings.")
		return b.String()
	}
	t := newTable(&b, "llrrrrrr", "Symbol", "Type", "Amount", "Avg. Cost", "Price", "Value", "Value (TRY)", "Unrealized P/L")
	var starred, daggered bool
	for _, p := range positions {
		price := p.CurrentPrice.String()
		switch p.PriceSource {
		case portfolio.FromOverride:
			price += " *"
			starred = true
		case portfolio.FromAverageCost:
			price += " †"
			daggered = true
		}
		t.row(
			p.Symbol,
			p.Asset.Label(),
			p.Amount.String(),
			p.AvgCost.String(),
			price,
			p.CurrentValue.String(),
			p.CurrentValueDomestic.String(),
			fmt.Sprintf("%s (%s)", p.UnrealizedPLDomestic.SignedString(), p.UnrealizedPLPercent.SignedString()),
		)
	}
	if starred || daggered {
		fmt.Fprintln(&b)
	}
	if starred {
		fmt.Fprintln(&b, "\\* price entered by hand")
	}
	if daggered {
		fmt.Fprintln(&b, "† no price known, valued at cost")
	}
	return b.String()
}
