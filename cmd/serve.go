package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/server"
	"golang.org/x/time/rate"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the portfolio over HTTP" }
func (*serveCmd) Usage() string {
	return `pcs serve [-addr <host:port>]

  Serves the portfolio as a JSON API. Every request must carry the PIN in the
  X-PIN header. See 'pcs topic server'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Defaults to server.addr of the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, func(a *app) subcommands.ExitStatus {
		cfg := a.cfg.Server
		addr := c.addr
		if addr == "" {
			addr = cfg.Addr
		}
		srv := server.New(a.book,
			server.WithLogger(a.log),
			server.WithRateSource(newRateSource(a)),
			server.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)),
			server.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout),
		)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}
