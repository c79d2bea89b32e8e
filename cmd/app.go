// Package cmd implements the pcs command line. Each subcommand lives in its
// own file.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/portfoy/portfolio"
	"github.com/portfoy/portfolio/config"
	"github.com/portfoy/portfolio/store"
	"github.com/sirupsen/logrus"
)

type group struct {
	name     string
	commands []subcommands.Command
}

// groups lists every subcommand, in help order.
func groups() []group {
	return []group{
		{"transactions", []subcommands.Command{
			&tradeCmd{command: portfolio.CmdBuy},
			&tradeCmd{command: portfolio.CmdSell},
			&editCmd{},
			&rmCmd{},
			&txCmd{},
			&fmtCmd{},
		}},
		{"reports", []subcommands.Command{
			&summaryCmd{},
			&holdingCmd{},
			&historyCmd{},
			&summarizeCmd{},
			&assistCmd{},
		}},
		{"market", []subcommands.Command{
			&ratesCmd{},
			&priceCmd{},
		}},
		{"data", []subcommands.Command{
			&exportCmd{},
			&importCmd{},
			&resetCmd{},
			&pinCmd{},
			&serveCmd{},
		}},
		{"help", []subcommands.Command{
			&topicCmd{},
		}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the configuration file. Defaults to $PCS_CONFIG, then ~/.pcs/config.yaml")
var verbose = flag.Bool("v", false, "Log debug messages")
var raw = flag.Bool("raw", false, "Print markdown reports without formatting them for the terminal")

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// app holds what a command needs to work on the portfolio.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store portfolio.Store
	book  *portfolio.Book
}

// open loads the configuration, opens the store and reads the book.
func open(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	log := cfg.Logger()
	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	defaults, err := cfg.DefaultRates()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DSN(), store.WithDefaultRates(defaults))
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:   cfg,
		log:   log,
		store: st,
		book:  portfolio.NewBook(st, portfolio.WithLogger(log), portfolio.WithRates(defaults)),
	}
	if err := a.book.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("could not read %s: %w", cfg.DSN(), err)
	}
	return a, nil
}

func (a *app) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// run opens the app, calls f and closes the app.
func run(ctx context.Context, f func(*app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	return f(a)
}

// printMarkdown renders markdown for the terminal, unless -raw is set.
func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}

func renderMarkdown(md string) string {
	if *raw {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// findTransaction returns the only transaction whose ID starts with prefix.
func findTransaction(book *portfolio.Book, prefix string) (portfolio.Transaction, error) {
	if prefix == "" {
		return portfolio.Transaction{}, fmt.Errorf("%w: empty ID", portfolio.ErrNotFound)
	}
	var found []portfolio.Transaction
	for _, tx := range book.Transactions() {
		if strings.HasPrefix(tx.ID, prefix) {
			found = append(found, tx)
		}
	}
	switch len(found) {
	case 0:
		return portfolio.Transaction{}, fmt.Errorf("%w: no ID starts with %q", portfolio.ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return portfolio.Transaction{}, fmt.Errorf("%q matches %d transactions, type more characters", prefix, len(found))
	}
}
