package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/rugscan/internal/model"
)

// Summarizer attaches optional narratives to reports.
// Failures degrade to warnings and never change the report.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; a disabled config yields a summarizer with no provider
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary writes a narrative for report. It returns nil when disabled.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.Narrative, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	narrative := &model.Narrative{
		Provider: s.provider.Name(),
		Model:    s.config.Model,
		Strict:   s.config.Strict,
	}

	if !s.provider.IsAvailable(ctx) {
		narrative.Warnings = append(narrative.Warnings,
			fmt.Sprintf("LLM provider %s is not available; narrative skipped", s.provider.Name()))
		return narrative, nil
	}
	narrative.Enabled = true

	allowed := AllowedSignatures(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:            report,
		AllowedSignatures: allowed,
		Model:             s.config.Model,
		MaxTokens:         s.config.MaxTokens,
	})
	if err != nil {
		narrative.Warnings = append(narrative.Warnings, fmt.Sprintf("Narrative generation failed: %v", err))
		return narrative, nil
	}

	if resp.Model != "" {
		narrative.Model = resp.Model
	}
	narrative.SummaryMD = resp.Summary
	narrative.Warnings = append(narrative.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.Strict {
		narrative.Warnings = append(narrative.Warnings,
			fmt.Sprintf("Verified %d cited signatures against %d matched", len(resp.Cited), len(allowed)))
	}

	return narrative, nil
}

// RenderSeparateMarkdown renders a narrative as a standalone markdown document
func RenderSeparateMarkdown(n *model.Narrative) string {
	if n == nil || !n.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Narrative\n\n")
	b.WriteString("> **GENERATED CONTENT.** The risk score, taxes and liquidity result were determined independently by pattern matching. This text only explains them.\n\n")
	fmt.Fprintf(&b, "- **Provider:** %s\n", n.Provider)
	if n.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", n.Model)
	}
	fmt.Fprintf(&b, "- **Strict Signature Mode:** %t\n\n", n.Strict)

	b.WriteString("## Narrative\n\n")
	if n.SummaryMD == "" {
		b.WriteString("_No narrative generated._\n")
	} else {
		b.WriteString(n.SummaryMD)
		b.WriteString("\n")
	}

	if len(n.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range n.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
