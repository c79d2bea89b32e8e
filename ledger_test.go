package portfolio

import (
	"errors"
	"slices"
	"testing"
)

func TestLedgerOrder(t *testing.T) {
	ledger := NewLedger(
		buy("2025-02-01", "BBB", 1, tl(10)).WithID("2"),
		buy("2025-01-10", "AAA", 1, tl(10)).WithID("1"),
		sell("2025-02-01", "BBB", 1, tl(12)).WithID("3"),
	)
	ledger.Append(buy("2025-01-10", "CCC", 1, tl(10)).WithID("4"))

	var ids []string
	for _, tx := range ledger.Transactions() {
		ids = append(ids, tx.ID)
	}
	// same day transactions keep their insertion order
	if want := []string{"1", "4", "2", "3"}; !slices.Equal(ids, want) {
		t.Errorf("Transactions() = %v, want %v", ids, want)
	}
	if got, want := ledger.Symbols(), []string{"AAA", "BBB", "CCC"}; !slices.Equal(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestLedgerFilters(t *testing.T) {
	ledger := NewLedger(
		buy("2025-01-01", "AAA", 10, tl(10)).WithID("1"),
		buy("2025-01-02", "BBB", 1, tl(10)).WithID("2"),
		sell("2025-01-03", "AAA", 5, tl(12)).WithID("3"),
	)
	count := func(filters ...func(Transaction) bool) int {
		n := 0
		for range ledger.Transactions(filters...) {
			n++
		}
		return n
	}
	if got, want := count(BySymbol("aaa")), 2; got != want {
		t.Errorf("BySymbol(aaa) matched %d, want %d", got, want)
	}
	if got, want := count(ByCommand(CmdSell)), 1; got != want {
		t.Errorf("ByCommand(sell) matched %d, want %d", got, want)
	}
	if got, want := count(BySymbol("BBB"), ByCommand(CmdSell)), 2; got != want {
		t.Errorf("BySymbol(BBB) or ByCommand(sell) matched %d, want %d", got, want)
	}
	if got, want := count(), 3; got != want {
		t.Errorf("no filter matched %d, want %d", got, want)
	}
}

func TestLedgerReplaceAndDelete(t *testing.T) {
	ledger := NewLedger(
		buy("2025-01-01", "AAA", 10, tl(10)).WithID("1"),
		buy("2025-01-05", "BBB", 1, tl(10)).WithID("2"),
	)

	// moving a transaction in time resorts the ledger
	if err := ledger.Replace(buy("2025-01-09", "AAA", 20, tl(10)).WithID("1")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	all := ledger.All()
	if got, want := all[1].ID, "1"; got != want {
		t.Errorf("last transaction = %s, want %s", got, want)
	}
	if got, want := all[1].Amount, Q(20); !got.Equal(want) {
		t.Errorf("replaced amount = %v, want %v", got, want)
	}

	if err := ledger.Replace(buy("2025-01-09", "AAA", 1, tl(1)).WithID("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace(unknown) error = %v, want ErrNotFound", err)
	}

	tx, err := ledger.Delete("2")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, want := tx.Symbol, "BBB"; got != want {
		t.Errorf("deleted %s, want %s", got, want)
	}
	if _, ok := ledger.Get("2"); ok {
		t.Errorf("Get(2) found a deleted transaction")
	}
	if _, err := ledger.Delete("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if got, want := ledger.Len(), 1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestLedgerAllIsACopy(t *testing.T) {
	ledger := NewLedger(buy("2025-01-01", "AAA", 10, tl(10)).WithID("1"))
	all := ledger.All()
	all[0].Symbol = "ZZZ"
	if tx, _ := ledger.Get("1"); tx.Symbol != "AAA" {
		t.Errorf("ledger was modified through All(): %s", tx.Symbol)
	}
}
