package renderer

import (
	"strings"
	"testing"

	"github.com/portfoy/portfolio"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func snapshot(t *testing.T) *portfolio.Snapshot {
	t.Helper()
	tx := func(cmd portfolio.CommandType, on string, asset portfolio.AssetType, symbol string, amount, price float64) portfolio.Transaction {
		q, p := portfolio.Q(amount), portfolio.M(price, asset.DefaultCurrency())
		if cmd == portfolio.CmdSell {
			return portfolio.NewSell(portfolio.MustParse(on), asset, symbol, q, p).WithID(symbol + "-" + on)
		}
		return portfolio.NewBuy(portfolio.MustParse(on), asset, symbol, q, p).WithID(symbol + "-" + on)
	}
	prices, err := portfolio.ParsePriceOverrides(map[string]string{"THYAO": "300"})
	if err != nil {
		t.Fatal(err)
	}
	return portfolio.Compute([]portfolio.Transaction{
		tx(portfolio.CmdBuy, "2024-01-02", portfolio.Stock, "THYAO", 10, 250),
		tx(portfolio.CmdBuy, "2024-01-03", portfolio.StockUS, "AAPL", 5, 180),
		tx(portfolio.CmdBuy, "2024-01-04", portfolio.Crypto, "BTC", 0.1, 40000),
		tx(portfolio.CmdBuy, "2024-01-05", portfolio.Stock, "ASELS", 20, 40),
		tx(portfolio.CmdSell, "2024-02-01", portfolio.Stock, "ASELS", 20, 45),
	}, portfolio.DefaultRates(), prices)
}

// tables parses markdown and returns the header cells of every table.
func tables(t *testing.T, markdown string) [][]string {
	t.Helper()
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(source))

	var res [][]string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*extast.TableHeader); ok {
			var cells []string
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, string(c.Text(source)))
			}
			res = append(res, cells)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return res
}

func TestSummaryMarkdown(t *testing.T) {
	got := SummaryMarkdown(snapshot(t))
	if strings.Contains(got, "error") {
		t.Fatalf("template failed:\n%s", got)
	}
	// totals, top holdings, allocation
	if n := len(tables(t, got)); n != 3 {
		t.Errorf("got %d tables, want 3:\n%s", n, got)
	}
	for _, want := range []string{"# Portfolio", "| Net cost |", "AAPL", "THYAO", "BTC", "Foreign equity", "price entered by hand"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ASELS") {
		t.Errorf("summary lists a closed position:\n%s", got)
	}
}

func TestSummaryMarkdownEmpty(t *testing.T) {
	got := SummaryMarkdown(portfolio.Compute(nil, portfolio.DefaultRates(), portfolio.PriceOverrides{}))
	if !strings.Contains(got, "No holdings.") || !strings.Contains(got, "Net cash recovered") {
		t.Errorf("unexpected empty summary:\n%s", got)
	}
	if strings.Contains(got, "## Allocation") {
		t.Errorf("empty summary shows an allocation:\n%s", got)
	}
}

func TestHoldingsMarkdown(t *testing.T) {
	s := snapshot(t)
	got := tables(t, HoldingsMarkdown(s.Holdings()))
	if len(got) != 1 {
		t.Fatalf("got %d tables, want 1", len(got))
	}
	if want := []string{"Symbol", "Type", "Amount", "Avg. Cost", "Price", "Value", "Value (TRY)", "Unrealized P/L"}; strings.Join(got[0], ",") != strings.Join(want, ",") {
		t.Errorf("header = %v, want %v", got[0], want)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	got := HistoryMarkdown(snapshot(t).History())
	if !strings.Contains(got, "| ASELS | Domestic equity | closed |") {
		t.Errorf("history does not show ASELS as closed:\n%s", got)
	}
	if got := HistoryMarkdown(nil); got != "No history.\n" {
		t.Errorf("HistoryMarkdown(nil) = %q", got)
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	txs := []portfolio.Transaction{
		portfolio.NewBuy(portfolio.MustParse("2024-01-02"), portfolio.Stock, "A", portfolio.Q(1), portfolio.M(10, portfolio.TRY)).WithID("0123456789abcdef"),
		portfolio.NewBuy(portfolio.MustParse("2024-01-03"), portfolio.Stock, "B", portfolio.Q(1), portfolio.M(10, portfolio.TRY)).WithID("x").WithNote("a|b"),
	}
	got := TransactionsMarkdown(txs)
	if strings.Index(got, "| B |") > strings.Index(got, "| A |") {
		t.Errorf("transactions are not listed most recent first:\n%s", got)
	}
	if !strings.Contains(got, "| 01234567 |") {
		t.Errorf("IDs are not shortened:\n%s", got)
	}
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("pipes in notes are not escaped:\n%s", got)
	}
	if n := len(tables(t, got)); n != 1 {
		t.Errorf("got %d tables, want 1", n)
	}
}

func TestRatesMarkdown(t *testing.T) {
	r, err := portfolio.DefaultRates().With(portfolio.USD, decimal.RequireFromString("34.1"))
	if err != nil {
		t.Fatal(err)
	}
	got := RatesMarkdown(r)
	for _, want := range []string{"| USD | 34.1000 |", "| EUR | 35.2000 |", "| GBP | 41.1000 |"} {
		if !strings.Contains(got, want) {
			t.Errorf("rates do not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "| TRY |") {
		t.Errorf("rates list the domestic currency:\n%s", got)
	}
}

func TestDigestMarkdown(t *testing.T) {
	got := DigestMarkdown(snapshot(t).Digest(2))
	if n := strings.Count(got, "\n| "); n != 4 {
		t.Errorf("digest has %d table rows, want header, separator and 2 holdings:\n%s", n, got)
	}
}

func TestTransaction(t *testing.T) {
	tx := portfolio.NewSell(portfolio.MustParse("2024-01-02"), portfolio.Stock, "thyao", portfolio.Q(2), portfolio.M(10, portfolio.TRY))
	if got := Transaction(tx); !strings.HasPrefix(got, "Sold 2 THYAO at ") {
		t.Errorf("Transaction() = %q", got)
	}
}
