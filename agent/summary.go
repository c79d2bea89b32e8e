package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/portfoy/portfolio"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// SummaryModel is the model used by the Summarizer.
const SummaryModel = "gemini-2.5-flash"

// Generator is the part of genai.Models used by the Summarizer.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Summarizer writes a short commentary of a portfolio digest. It implements
// portfolio.Summarizer.
type Summarizer struct {
	gen      Generator
	Model    string
	Language string
	Log      logrus.FieldLogger
}

// NewSummarizer returns a Summarizer answering in Turkish with SummaryModel.
func NewSummarizer(client *genai.Client) *Summarizer {
	return NewSummarizerWith(client.Models)
}

// NewSummarizerWith uses any Generator.
func NewSummarizerWith(gen Generator) *Summarizer {
	return &Summarizer{gen: gen, Model: SummaryModel, Language: "Turkish", Log: logrus.StandardLogger()}
}

// Prompt returns the request sent for d.
func (s *Summarizer) Prompt(d portfolio.Digest) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("could not encode digest: %w", err)
	}
	var b strings.Builder
	fmt.Fprintln(&b, "You are a personal finance assistant. Values are in Turkish lira (TRY).")
	fmt.Fprintf(&b, "Portfolio data: %s\n", data)
	fmt.Fprintln(&b, "1. Summarize the situation.")
	fmt.Fprintln(&b, "2. Name the riskiest and the most profitable position.")
	fmt.Fprintln(&b, "3. Give one suggestion.")
	fmt.Fprintf(&b, "Answer in %s, short and friendly.\n", s.Language)
	return b.String(), nil
}

// Summarize asks the model for a commentary on d.
func (s *Summarizer) Summarize(ctx context.Context, d portfolio.Digest) (string, error) {
	prompt, err := s.Prompt(d)
	if err != nil {
		return "", err
	}
	resp, err := s.gen.GenerateContent(ctx, s.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.Model, err)
	}
	var parts []string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%s returned no text", s.Model)
	}
	s.Log.WithFields(logrus.Fields{"model": s.Model, "holdings": len(d.Holdings)}).Debug("summary generated")
	return strings.Join(parts, ""), nil
}

var _ portfolio.Summarizer = (*Summarizer)(nil)
