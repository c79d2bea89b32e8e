package portfolio

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent, used for display only.
type Percent float64

var hundred = decimal.NewFromInt(100)

// percentOf returns num/den*100, or 0 when den is not positive.
func percentOf(num, den decimal.Decimal) Percent {
	if !den.IsPositive() {
		return 0
	}
	return Percent(num.Div(den).Mul(hundred).InexactFloat64())
}

// Equal compares to a hundredth of a basis point.
func (p Percent) Equal(q Percent) bool { return math.Abs(float64(p-q)) < 1e-4 }

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString always shows the sign, and "-" for a null ratio.
func (p Percent) SignedString() string {
	if math.Abs(float64(p)) < 0.005 {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", float64(p))
}
