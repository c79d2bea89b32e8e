package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/forex"
	"github.com/portfoy/portfolio/renderer"
	"golang.org/x/time/rate"
)

type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "show, set or refresh exchange rates" }
func (*ratesCmd) Usage() string {
	return `pcs rates [show]
pcs rates set <currency> <rate>
pcs rates refresh

  Rates are the value of one unit of a foreign currency in TRY. 'refresh'
  fetches current rates, the last known ones are kept when it fails.
  See 'pcs topic rates'.
`
}

func (*ratesCmd) SetFlags(*flag.FlagSet) {}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	action := "show"
	if f.NArg() > 0 {
		action = f.Arg(0)
	}
	switch {
	case action == "show" && f.NArg() <= 1:
	case action == "set" && f.NArg() == 3:
	case action == "refresh" && f.NArg() == 1:
	default:
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app) subcommands.ExitStatus {
		switch action {
		case "set":
			cur, err := portfolio.ParseCurrency(f.Arg(1))
			if err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
			if _, err := a.book.SetRate(ctx, cur, f.Arg(2)); err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
		case "refresh":
			_, err := a.book.RefreshRates(ctx, newRateSource(a))
			if errors.Is(err, portfolio.ErrStale) {
				fmt.Fprintln(stderr, "Warning:", err)
				fmt.Fprintln(stderr, "The last known rates are kept.")
				printMarkdown(renderer.RatesMarkdown(a.book.Rates()))
				return subcommands.ExitFailure
			}
			if err != nil {
				fmt.Fprintln(stderr, "Error:", err)
				return subcommands.ExitFailure
			}
		}
		printMarkdown(renderer.RatesMarkdown(a.book.Rates()))
		return subcommands.ExitSuccess
	})
}

// newRateSource returns the forex client described by the configuration.
func newRateSource(a *app) *forex.Client {
	cfg := a.cfg.Forex
	every := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return forex.NewClient(
		forex.WithBaseURL(cfg.URL),
		forex.WithLimiter(rate.NewLimiter(rate.Every(every), 1)),
		forex.WithHTTPClient(forex.Daily(cfg.CacheDir, a.log)),
		forex.WithLogger(a.log),
	)
}
