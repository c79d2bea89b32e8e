package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/portfoy/portfolio/agent"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant"
}
func (*assistCmd) Usage() string {
	return `pcs assist [<question>...]

  Starts a chat with an assistant that can read the portfolio. The optional
  question is asked first. GEMINI_API_KEY must be set.
`
}

func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (*assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		client, err := genai.NewClient(ctx, nil)
		if err != nil {
			fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
			return subcommands.ExitFailure
		}
		assistant := agent.New(stdout, stdin, agent.NewTrader(), agent.NewAccountant(a.book))
		assistant.Render = renderMarkdown
		if err := assistant.Run(ctx, client, prompts...); err != nil {
			fmt.Fprintln(stderr, "Agent failed:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}
