package renderer

import (
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
)

// HistoryMarkdown renders every position that is held or has realized a
// profit or a loss.
func HistoryMarkdown(positions []portfolio.Position) string {
	var b strings.Builder
	if len(positions) == 0 {
		fmt.Fprintln(&b, "No history.")
		return b.String()
	}
	t := newTable(&b, "llcrrrr", "Symbol", "Type", "Status", "Amount", "Avg. Cost", "Realized P/L", "Realized (TRY)")
	for _, p := range positions {
		status := "held"
		if !p.IsHeld() {
			status = "closed"
		}
		t.row(
			p.Symbol,
			p.Asset.Label(),
			status,
			p.Amount.String(),
			p.AvgCost.String(),
			p.RealizedPL.SignedString(),
			p.RealizedPLDomestic.SignedString(),
		)
	}
	return b.String()
}
