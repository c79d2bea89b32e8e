package agent

import (
	"context"
	"fmt"

	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/docs"
	"github.com/portfoy/portfolio/renderer"
	"google.golang.org/genai"
)

// Model is the model used by the assistant experts.
const Model = "gemini-2.5-pro"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user holds a personal portfolio valued in Turkish lira (TRY): Turkish and foreign
			stocks, crypto, gold, currencies and funds. Devise a plan of questions to ask to each
			expert and come up with the best response to the user's request.

			The user will assume that you know about his symbols, check the portfolio first.
			`),
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded with Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of the financial products and markets,
		of the latest news about companies, funds, currencies and commodities.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are an expert in trading, you can search and find about anything related to
			financial institutions, companies, markets, funds, currencies and gold. You leverage
			Google Search to ground your assertions in a solid truth, with a focus on Borsa Istanbul
			and the markets a Turkish investor follows.
			`),
		},
	}
}

// Portfolio is what the Accountant can read. *portfolio.Book implements it.
type Portfolio interface {
	Snapshot() *portfolio.Snapshot
	Transactions() []portfolio.Transaction
	Rates() portfolio.RateTable
}

// NewAccountant returns an expert answering questions about p.
func NewAccountant(p Portfolio) *Expert {
	lib := Tools(p)
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He is in charge of reading the user's portfolio:
		holdings, closed positions, transactions, exchange rates and totals.`,
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are an accountant in charge of the user's portfolio.
			You know how to use the Tools to extract relevant information about the user's portfolio.
			Other experts might ask you questions, pardon their approximative language and figure
			out what they meant. Every figure comes from the tools, never guess one.

			` + must(docs.Read("valuation", "transactions"))),
		},
		Library: NewLibrary(lib),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return failure(id, f.Decl.Name, err)
	}
	return success(id, f.Decl.Name, out)
}

// markdownTool declares a tool returning markdown, with optional string parameters.
func markdownTool(name, description string, params map[string]string, f func(ctx context.Context, args map[string]any) (string, error)) *Func {
	props := make(map[string]*genai.Schema, len(params))
	for p, desc := range params {
		props[p] = &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: props},
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown document."},
		},
		Func: f,
	}
}

// stringArg returns the optional string argument name.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return s, nil
}

// Tools returns the functions reading p.
func Tools(p Portfolio) []*Func {
	symbolParam := map[string]string{"symbol": "Part of a symbol to filter on, case insensitive. Empty means all."}
	return []*Func{
		markdownTool("Summary", "Totals of the portfolio in TRY, its largest holdings and its allocation per asset type.", nil,
			func(context.Context, map[string]any) (string, error) {
				return renderer.SummaryMarkdown(p.Snapshot()), nil
			}),
		markdownTool("Holdings", "Positions currently held with amount, average cost, current price, value and unrealized profit.", symbolParam,
			func(_ context.Context, args map[string]any) (string, error) {
				term, err := stringArg(args, "symbol")
				if err != nil {
					return "", err
				}
				var held []portfolio.Position
				for _, pos := range p.Snapshot().Search(term) {
					if pos.IsHeld() {
						held = append(held, pos)
					}
				}
				return renderer.HoldingsMarkdown(held), nil
			}),
		markdownTool("History", "Held and closed positions with their realized profit or loss.", symbolParam,
			func(_ context.Context, args map[string]any) (string, error) {
				term, err := stringArg(args, "symbol")
				if err != nil {
					return "", err
				}
				return renderer.HistoryMarkdown(p.Snapshot().Search(term)), nil
			}),
		markdownTool("Transactions", "Every buy and sell, most recent first.", map[string]string{"symbol": "Exact symbol to filter on. Empty means all."},
			func(_ context.Context, args map[string]any) (string, error) {
				symbol, err := stringArg(args, "symbol")
				if err != nil {
					return "", err
				}
				ledger := portfolio.NewLedger(p.Transactions()...)
				var filters []func(portfolio.Transaction) bool
				if symbol != "" {
					filters = append(filters, portfolio.BySymbol(symbol))
				}
				var txs []portfolio.Transaction
				for _, tx := range ledger.Transactions(filters...) {
					txs = append(txs, tx)
				}
				return renderer.TransactionsMarkdown(txs), nil
			}),
		markdownTool("Rates", "Exchange rates used to convert foreign currencies to TRY.", nil,
			func(context.Context, map[string]any) (string, error) {
				return renderer.RatesMarkdown(p.Rates()), nil
			}),
	}
}
