package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/rugscan/internal/model"
)

const systemPrompt = "You explain smart-contract risk scan results. Cite only the identifiers you are given."

var citationPattern = regexp.MustCompile("`([^`\n]+)`")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes a narrative for the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for a narrative
type SummarizeRequest struct {
	Report model.Report

	// AllowedSignatures is the only vocabulary the model may cite in backticks
	AllowedSignatures []string

	// Prompt overrides the default prompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the model output
type SummarizeResponse struct {
	Summary    string
	Cited      []string // Backticked identifiers found in Summary
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama" or "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// Strict rejects narratives citing signatures that were not matched
	Strict bool

	MaxTokens int

	// Proxy settings for providers that use their own HTTP client
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		Strict:    true,
		MaxTokens: 800,
	}
}

// BuildPrompt constructs the default prompt
func BuildPrompt(report model.Report, allowed []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining the output of rugscan, a heuristic scanner that looks for textual signatures of rug-pull and honeypot patterns in smart-contract source. It performs substring matching only; it does not prove that a contract is malicious or safe.

RULES:
1. Only mention code identifiers from this list, written in backticks:
%s
2. Do not invent functions, variables or addresses.
3. Never state that the contract is a scam or that it is safe. Describe what the signatures usually indicate.
4. Mention that substring matching can produce false positives.

Scan result:
- Risk score: %d (%s)
- Buy tax: %d%%
- Sell tax: %d%%
`, joinSignatures(allowed), report.Score.Value, report.Score.Band, report.Taxes.BuyPercent, report.Taxes.SellPercent)

	if report.Liquidity.Locked {
		fmt.Fprintf(&b, "- Liquidity lock custodian referenced: %s\n", report.Liquidity.Provider)
	} else {
		b.WriteString("- No known liquidity lock custodian referenced\n")
	}

	if len(report.Matches) == 0 {
		b.WriteString("\nNo catalog signatures matched.\n")
	} else {
		b.WriteString("\nMatched categories:\n")
		for _, m := range report.Matches {
			fmt.Fprintf(&b, "- %s (%s): %s\n", m.Category.Label, m.Category.Kind, strings.Join(m.Matched, ", "))
		}
	}

	b.WriteString("\nWrite 3-5 sentences for a token buyer.")

	return b.String()
}

func joinSignatures(sigs []string) string {
	if len(sigs) == 0 {
		return "(no signatures matched; do not cite any identifiers)"
	}
	var b strings.Builder
	for i, s := range sigs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- `" + s + "`")
	}
	return b.String()
}

// AllowedSignatures returns the distinct matched signatures of a report in report order
func AllowedSignatures(report model.Report) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sig := range report.MatchedSignatures() {
		if !seen[sig] {
			seen[sig] = true
			out = append(out, sig)
		}
	}
	return out
}

// verifyCitations extracts the backticked identifiers of a narrative and, in
// strict mode, rejects any that is not an allowed signature
func verifyCitations(summary string, allowed []string, strict bool) ([]string, error) {
	cited := extractCitations(summary)
	if strict {
		for _, sig := range cited {
			if !contains(allowed, sig) {
				return nil, fmt.Errorf("SIGNATURE LEAK: LLM cited unmatched identifier: %s", sig)
			}
		}
	}
	return cited, nil
}

// extractCitations returns the distinct backticked identifiers in text
func extractCitations(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		sig := strings.TrimSpace(m[1])
		if sig != "" && !seen[sig] {
			seen[sig] = true
			unique = append(unique, sig)
		}
	}
	return unique
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
