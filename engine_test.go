package portfolio

import (
	"encoding/json"
	"math/rand"
	"slices"
	"testing"
)

func TestComputeScenarios(t *testing.T) {
	t.Run("single buy", func(t *testing.T) {
		s := Compute([]Transaction{buy("2024-01-10", "AAA", 10, tl(100))}, DefaultRates(), PriceOverrides{})
		p := mustPosition(t, s, "AAA")
		if got, want := p.Amount, Q(10); !got.Equal(want) {
			t.Errorf("Amount = %v, want %v", got, want)
		}
		if got, want := p.AvgCost, tl(100); !got.Equal(want) {
			t.Errorf("AvgCost = %v, want %v", got, want)
		}
		if got, want := p.TotalCost, tl(1000); !got.Equal(want) {
			t.Errorf("TotalCost = %v, want %v", got, want)
		}
		if got, want := p.CurrentPrice, tl(100); !got.Equal(want) {
			t.Errorf("CurrentPrice = %v, want %v", got, want)
		}
		if !p.UnrealizedPL.IsZero() {
			t.Errorf("UnrealizedPL = %v, want 0", p.UnrealizedPL)
		}
		if got, want := p.PriceSource, FromLastTrade; got != want {
			t.Errorf("PriceSource = %v, want %v", got, want)
		}
	})

	t.Run("partial sell keeps average cost", func(t *testing.T) {
		s := Compute([]Transaction{
			buy("2024-01-10", "AAA", 10, tl(100)),
			sell("2024-02-10", "AAA", 4, tl(150)),
		}, DefaultRates(), PriceOverrides{})
		p := mustPosition(t, s, "AAA")
		if got, want := p.AvgCost, tl(100); !got.Equal(want) {
			t.Errorf("AvgCost = %v, want %v", got, want)
		}
		if got, want := p.Amount, Q(6); !got.Equal(want) {
			t.Errorf("Amount = %v, want %v", got, want)
		}
		if got, want := p.TotalCost, tl(600); !got.Equal(want) {
			t.Errorf("TotalCost = %v, want %v", got, want)
		}
		if got, want := p.RealizedPL, tl(200); !got.Equal(want) {
			t.Errorf("RealizedPL = %v, want %v", got, want)
		}
	})

	t.Run("full liquidation", func(t *testing.T) {
		s := Compute([]Transaction{
			buy("2024-01-10", "AAA", 10, tl(100)),
			sell("2024-02-10", "AAA", 10, tl(120)),
		}, DefaultRates(), PriceOverrides{})
		p := mustPosition(t, s, "AAA")
		if !p.Amount.IsZero() || !p.TotalCost.IsZero() || !p.AvgCost.IsZero() {
			t.Errorf("position not reset: amount %v, total cost %v, average cost %v", p.Amount, p.TotalCost, p.AvgCost)
		}
		if got, want := p.RealizedPL, tl(200); !got.Equal(want) {
			t.Errorf("RealizedPL = %v, want %v", got, want)
		}
		if got := symbols(s.Holdings()); len(got) != 0 {
			t.Errorf("Holdings() = %v, want none", got)
		}
		if got, want := symbols(s.History()), []string{"AAA"}; !slices.Equal(got, want) {
			t.Errorf("History() = %v, want %v", got, want)
		}
	})

	t.Run("two currencies", func(t *testing.T) {
		txs := []Transaction{
			buy("2024-01-10", "AAA", 10, tl(100)),
			buy("2024-01-11", "BBB", 2, usd(50)),
		}
		s32 := Compute(txs, rateTable(t, USD, "32"), PriceOverrides{})
		if got, want := s32.TotalValue(), tl(4200); !got.Equal(want) {
			t.Errorf("TotalValue() = %v, want %v", got, want)
		}
		s33 := Compute(txs, rateTable(t, USD, "33"), PriceOverrides{})
		if got, want := s33.TotalValue(), tl(4300); !got.Equal(want) {
			t.Errorf("TotalValue() = %v, want %v", got, want)
		}
		if a, b := mustPosition(t, s32, "AAA"), mustPosition(t, s33, "AAA"); !a.CurrentValueDomestic.Equal(b.CurrentValueDomestic) {
			t.Errorf("AAA domestic value changed with the USD rate: %v != %v", a.CurrentValueDomestic, b.CurrentValueDomestic)
		}
		if got, want := mustPosition(t, s33, "BBB").CurrentValueDomestic, tl(3300); !got.Equal(want) {
			t.Errorf("BBB domestic value = %v, want %v", got, want)
		}
	})

	t.Run("no price known falls back to average cost", func(t *testing.T) {
		p := newPosition("AAA", Stock, TRY)
		p.value(DefaultRates(), PriceOverrides{})
		if got, want := p.PriceSource, FromAverageCost; got != want {
			t.Errorf("PriceSource = %v, want %v", got, want)
		}
		if !p.CurrentPrice.Equal(p.AvgCost) {
			t.Errorf("CurrentPrice = %v, want %v", p.CurrentPrice, p.AvgCost)
		}
		if p.UnrealizedPLPercent != 0 {
			t.Errorf("UnrealizedPLPercent = %v, want 0", p.UnrealizedPLPercent)
		}
	})

	t.Run("net cash recovered", func(t *testing.T) {
		s := Compute([]Transaction{
			buy("2024-01-10", "AAA", 10, tl(100)),
			sell("2024-02-10", "AAA", 10, tl(120)),
		}, DefaultRates(), PriceOverrides{})
		if got, want := s.TotalInvested(), tl(1000); !got.Equal(want) {
			t.Errorf("TotalInvested() = %v, want %v", got, want)
		}
		if got, want := s.TotalWithdrawn(), tl(1200); !got.Equal(want) {
			t.Errorf("TotalWithdrawn() = %v, want %v", got, want)
		}
		if got, want := s.NetContribution(), tl(-200); !got.Equal(want) {
			t.Errorf("NetContribution() = %v, want %v", got, want)
		}
		if got, want := s.ContributionMode(), NetRecovered; got != want {
			t.Errorf("ContributionMode() = %v, want %v", got, want)
		}
	})
}

func TestComputeIsIdempotent(t *testing.T) {
	txs := []Transaction{
		buy("2024-01-10", "AAA", 3, tl(10.5)),
		buy("2024-01-12", "BBB", 7, usd(1.25)),
		sell("2024-02-01", "AAA", 1, tl(11)),
	}
	r := rateTable(t, USD, "32.5")
	prices, err := ParsePriceOverrides(map[string]string{"BBB": "1.5"})
	if err != nil {
		t.Fatal(err)
	}
	first, err := json.Marshal(Compute(txs, r, prices))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Compute(txs, r, prices))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("Compute is not idempotent:\n%s\n%s", first, second)
	}
}

func TestComputeNeverNegative(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	symbols := []string{"AAA", "BBB", "CCC"}
	for round := 0; round < 50; round++ {
		var txs []Transaction
		for i := 0; i < 30; i++ {
			on := NewDate(2024, 1, 1+rnd.Intn(60)).String()
			symbol := symbols[rnd.Intn(len(symbols))]
			amount := float64(1 + rnd.Intn(20))
			price := tl(float64(rnd.Intn(20000)) / 100)
			if rnd.Intn(2) == 0 {
				txs = append(txs, buy(on, symbol, amount, price))
			} else {
				txs = append(txs, sell(on, symbol, amount, price))
			}
		}
		for _, p := range Compute(txs, DefaultRates(), PriceOverrides{}).Positions() {
			if p.Amount.IsNegative() || p.TotalCost.IsNegative() {
				t.Fatalf("round %d: %s has amount %v and total cost %v", round, p.Symbol, p.Amount, p.TotalCost)
			}
			if p.Amount.IsZero() && !p.AvgCost.IsZero() {
				t.Fatalf("round %d: %s has no units but an average cost of %v", round, p.Symbol, p.AvgCost)
			}
		}
	}
}

func TestAverageCostIsWeightedMean(t *testing.T) {
	s := Compute([]Transaction{
		buy("2024-01-10", "AAA", 10, tl(100)),
		buy("2024-01-11", "AAA", 30, tl(120)),
	}, DefaultRates(), PriceOverrides{})
	if got, want := mustPosition(t, s, "AAA").AvgCost, tl(115); !got.Equal(want) {
		t.Errorf("AvgCost = %v, want %v", got, want)
	}
}

func TestRealizedPL(t *testing.T) {
	s := Compute([]Transaction{
		buy("2024-01-10", "AAA", 3, tl(10)),
		buy("2024-01-11", "AAA", 7, tl(20)),
		sell("2024-01-12", "AAA", 4, tl(25)),
	}, DefaultRates(), PriceOverrides{})
	p := mustPosition(t, s, "AAA")
	// average cost is 170/10 = 17
	if got, want := p.RealizedPL, tl(32); !got.Equal(want) {
		t.Errorf("RealizedPL = %v, want %v", got, want)
	}
	if got, want := p.AvgCost, tl(17); !got.Equal(want) {
		t.Errorf("AvgCost = %v, want %v", got, want)
	}
}

func TestFullLiquidationLeavesNoResidue(t *testing.T) {
	s := Compute([]Transaction{
		buy("2024-01-10", "AAA", 1, tl(10)),
		buy("2024-01-10", "AAA", 2, tl(10.01)),
		sell("2024-01-11", "AAA", 1.5, tl(12)),
		sell("2024-01-12", "AAA", 1.5, tl(9)),
	}, DefaultRates(), PriceOverrides{})
	p := mustPosition(t, s, "AAA")
	if !p.Amount.IsZero() {
		t.Errorf("Amount = %v, want 0", p.Amount)
	}
	if !p.TotalCost.Equal(tl(0)) || !p.AvgCost.Equal(tl(0)) {
		t.Errorf("TotalCost = %v, AvgCost = %v, want exactly 0", p.TotalCost.Decimal(), p.AvgCost.Decimal())
	}
}

func TestCurrencyNeutrality(t *testing.T) {
	txs := []Transaction{
		buy("2024-01-10", "BBB", 4, usd(10)),
		buy("2024-01-11", "CCC", 2, usd(7.5)),
		sell("2024-01-12", "BBB", 1, usd(12)),
	}
	prices, _ := ParsePriceOverrides(map[string]string{"CCC": "8"})
	base := Compute(txs, rateTable(t, USD, "32"), prices)
	scaled := Compute(txs, rateTable(t, USD, "64"), prices)

	two := Q(2)
	for name, pair := range map[string][2]Money{
		"TotalValue":        {base.TotalValue(), scaled.TotalValue()},
		"TotalUnrealizedPL": {base.TotalUnrealizedPL(), scaled.TotalUnrealizedPL()},
		"TotalRealizedPL":   {base.TotalRealizedPL(), scaled.TotalRealizedPL()},
		"TotalInvested":     {base.TotalInvested(), scaled.TotalInvested()},
		"TotalWithdrawn":    {base.TotalWithdrawn(), scaled.TotalWithdrawn()},
	} {
		if got, want := pair[1], pair[0].Mul(two); !got.Equal(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	for _, symbol := range []string{"BBB", "CCC"} {
		a, b := mustPosition(t, base, symbol), mustPosition(t, scaled, symbol)
		if !a.AvgCost.Equal(b.AvgCost) || !a.RealizedPL.Equal(b.RealizedPL) {
			t.Errorf("%s native figures changed with the rate", symbol)
		}
	}
}

func TestSameDayKeepsInputOrder(t *testing.T) {
	b := buy("2024-01-10", "AAA", 10, tl(100))
	s := sell("2024-01-10", "AAA", 5, tl(110))

	inOrder := mustPosition(t, Compute([]Transaction{b, s}, DefaultRates(), PriceOverrides{}), "AAA")
	if got, want := inOrder.RealizedPL, tl(50); !got.Equal(want) {
		t.Errorf("buy then sell: RealizedPL = %v, want %v", got, want)
	}
	if got, want := inOrder.Amount, Q(5); !got.Equal(want) {
		t.Errorf("buy then sell: Amount = %v, want %v", got, want)
	}

	// the sell comes first and closes an empty position
	reversed := mustPosition(t, Compute([]Transaction{s, b}, DefaultRates(), PriceOverrides{}), "AAA")
	if got, want := reversed.Amount, Q(10); !got.Equal(want) {
		t.Errorf("sell then buy: Amount = %v, want %v", got, want)
	}
	if got, want := reversed.RealizedPL, tl(550); !got.Equal(want) {
		t.Errorf("sell then buy: RealizedPL = %v, want %v", got, want)
	}
}

func TestComputeSortsByDate(t *testing.T) {
	txs := []Transaction{
		sell("2024-03-01", "AAA", 5, tl(130)),
		buy("2024-01-01", "AAA", 10, tl(100)),
	}
	p := mustPosition(t, Compute(txs, DefaultRates(), PriceOverrides{}), "AAA")
	if got, want := p.RealizedPL, tl(150); !got.Equal(want) {
		t.Errorf("RealizedPL = %v, want %v", got, want)
	}
	// the latest trade is the sell, whatever the input order
	if got, want := p.CurrentPrice, tl(130); !got.Equal(want) {
		t.Errorf("CurrentPrice = %v, want %v", got, want)
	}
}

func TestPriceResolution(t *testing.T) {
	txs := []Transaction{
		buy("2024-01-01", "AAA", 10, tl(100)),
		buy("2024-01-05", "AAA", 10, tl(110)),
	}
	tests := []struct {
		name       string
		overrides  map[string]string
		wantPrice  Money
		wantSource PriceSource
	}{
		{"last trade", nil, tl(110), FromLastTrade},
		{"empty override", map[string]string{"AAA": ""}, tl(110), FromLastTrade},
		{"override", map[string]string{"aaa": "150"}, tl(150), FromOverride},
		{"zero override", map[string]string{"AAA": "0"}, tl(0), FromOverride},
		{"other symbol", map[string]string{"BBB": "1"}, tl(110), FromLastTrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices, err := ParsePriceOverrides(tt.overrides)
			if err != nil {
				t.Fatal(err)
			}
			p := mustPosition(t, Compute(txs, DefaultRates(), prices), "AAA")
			if !p.CurrentPrice.Equal(tt.wantPrice) {
				t.Errorf("CurrentPrice = %v, want %v", p.CurrentPrice, tt.wantPrice)
			}
			if p.PriceSource != tt.wantSource {
				t.Errorf("PriceSource = %v, want %v", p.PriceSource, tt.wantSource)
			}
		})
	}
}

func TestUnrealizedPercent(t *testing.T) {
	prices, _ := ParsePriceOverrides(map[string]string{"AAA": "125"})
	p := mustPosition(t, Compute([]Transaction{buy("2024-01-01", "AAA", 4, tl(100))}, DefaultRates(), prices), "AAA")
	if got, want := p.UnrealizedPL, tl(100); !got.Equal(want) {
		t.Errorf("UnrealizedPL = %v, want %v", got, want)
	}
	if got, want := p.UnrealizedPLPercent, Percent(25); !got.Equal(want) {
		t.Errorf("UnrealizedPLPercent = %v, want %v", got, want)
	}

	// a position bought for free has no percentage
	free := mustPosition(t, Compute([]Transaction{buy("2024-01-01", "GIFT", 4, tl(0))}, DefaultRates(), prices), "GIFT")
	if free.UnrealizedPLPercent != 0 {
		t.Errorf("UnrealizedPLPercent = %v, want 0", free.UnrealizedPLPercent)
	}
}

func TestUnknownRateReadsAsOne(t *testing.T) {
	s := Compute([]Transaction{buy("2024-01-01", "UKX", 2, M(50, GBP))}, RateTable{}, PriceOverrides{})
	if got, want := s.TotalValue(), tl(100); !got.Equal(want) {
		t.Errorf("TotalValue() = %v, want %v", got, want)
	}
}

func TestSymbolsAreCaseInsensitive(t *testing.T) {
	lower := buy("2024-01-01", "AAA", 1, tl(10))
	lower.Symbol = "aaa"
	s := Compute([]Transaction{lower, buy("2024-01-02", "AAA", 1, tl(20))}, DefaultRates(), PriceOverrides{})
	if got, want := len(s.Positions()), 1; got != want {
		t.Fatalf("len(Positions()) = %d, want %d", got, want)
	}
	if got, want := mustPosition(t, s, "aaa").Amount, Q(2); !got.Equal(want) {
		t.Errorf("Amount = %v, want %v", got, want)
	}
}

func TestMixedCurrencySymbolDoesNotPanic(t *testing.T) {
	s := Compute([]Transaction{
		buy("2024-01-01", "AAA", 1, tl(10)),
		buy("2024-01-02", "AAA", 1, usd(20)),
	}, DefaultRates(), PriceOverrides{})
	p := mustPosition(t, s, "AAA")
	if got, want := p.Currency, TRY; got != want {
		t.Errorf("Currency = %v, want %v", got, want)
	}
	if got, want := p.TotalCost, tl(30); !got.Equal(want) {
		t.Errorf("TotalCost = %v, want %v", got, want)
	}
}

func TestRealizedTotalIncludesExitedPositions(t *testing.T) {
	s := Compute([]Transaction{
		buy("2024-01-01", "AAA", 10, tl(100)),
		sell("2024-01-02", "AAA", 10, tl(110)),
		buy("2024-01-03", "BBB", 1, usd(10)),
		sell("2024-01-04", "BBB", 0.5, usd(12)),
	}, rateTable(t, USD, "30"), PriceOverrides{})
	// 100 TRY on AAA, 1 USD on BBB
	if got, want := s.TotalRealizedPL(), tl(130); !got.Equal(want) {
		t.Errorf("TotalRealizedPL() = %v, want %v", got, want)
	}
	// only BBB is held: 0.5 * 12 * 30
	if got, want := s.TotalValue(), tl(180); !got.Equal(want) {
		t.Errorf("TotalValue() = %v, want %v", got, want)
	}
	if got, want := s.TotalPL(), s.TotalUnrealizedPL().Add(s.TotalRealizedPL()); !got.Equal(want) {
		t.Errorf("TotalPL() = %v, want %v", got, want)
	}
}
