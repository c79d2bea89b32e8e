package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/agent"
	"github.com/portfoy/portfolio/renderer"
	"google.golang.org/genai"
)

type summarizeCmd struct {
	top int
}

func (*summarizeCmd) Name() string     { return "summarize" }
func (*summarizeCmd) Synopsis() string { return "ask Gemini for a short commentary" }
func (*summarizeCmd) Usage() string {
	return `pcs summarize [-n <holdings>]

  Sends the totals and the largest holdings to Gemini and prints its
  commentary. GEMINI_API_KEY must be set.
`
}

func (c *summarizeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.top, "n", 0, "Number of holdings sent. Defaults to agent.top of the configuration")
}

func (c *summarizeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		client, err := genai.NewClient(ctx, nil)
		if err != nil {
			fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
			return subcommands.ExitFailure
		}
		s := agent.NewSummarizer(client)
		s.Model = a.cfg.Agent.Model
		s.Language = a.cfg.Agent.Language
		s.Log = a.log

		top := c.top
		if top <= 0 {
			top = a.cfg.Agent.Top
		}
		digest := a.book.Snapshot().Digest(top)
		text, err := a.book.Summarize(ctx, s, top)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.DigestMarkdown(digest) + "\n" + text + "\n")
		return subcommands.ExitSuccess
	})
}
