package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/rugscan/internal/catalog"
	"github.com/ppiankov/rugscan/internal/model"
)

// Renderer turns scan results into JSON, Markdown and terminal output
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the scan result as indented JSON
func (r *Renderer) RenderJSON(result *ScanResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(result *ScanResult, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(result)), 0644)
}

// RenderLLMMarkdown writes a pre-rendered narrative document
func (r *Renderer) RenderLLMMarkdown(content string, path string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// Markdown builds the report document
func (r *Renderer) Markdown(result *ScanResult) string {
	report := result.Report
	var b strings.Builder

	b.WriteString("# 🔍 Smart Contract Risk Report\n\n")
	fmt.Fprintf(&b, "- **Source:** `%s`\n", result.Source)
	fmt.Fprintf(&b, "- **Adapter:** %s\n", result.Adapter)
	fmt.Fprintf(&b, "- **Scanned:** %s\n", result.ScannedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Catalog:** %s\n\n", report.CatalogVersion)

	fmt.Fprintf(&b, "> %s\n>\n", Headline(report.Score))
	fmt.Fprintf(&b, "> **Severity:** %s · **Colour:** `%s`\n\n", report.Score.Band.Severity(), report.Score.Band.Color())

	b.WriteString("### 📊 Taxes\n\n")
	fmt.Fprintf(&b, "- 💰 **Buy tax:** %d%%\n", report.Taxes.BuyPercent)
	fmt.Fprintf(&b, "- 💰 **Sell tax:** %d%%\n\n", report.Taxes.SellPercent)

	b.WriteString("### 🔒 Liquidity\n\n")
	b.WriteString(LiquidityStatus(report.Liquidity))
	b.WriteString("\n\n")

	if len(report.Matches) > 0 {
		b.WriteString("### 🔍 Findings\n\n")
		for _, m := range report.Matches {
			fmt.Fprintf(&b, "#### %s _(%s)_\n\n", m.Category.Label, m.Category.Kind)
			for _, sig := range m.Matched {
				fmt.Fprintf(&b, "- ❌ `%s`\n", sig)
			}
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Signatures are matched as plain substrings of the comment-stripped source. ")
		b.WriteString("A match is a reason to read the code, not proof of intent; a clean result is not proof of safety._\n")
	}

	return b.String()
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, result *ScanResult) {
	report := result.Report
	fmt.Fprintf(w, "\n%s\n", result.Source)
	fmt.Fprintf(w, "  %s [%s]\n", Headline(report.Score), report.Score.Band.Severity())
	fmt.Fprintf(w, "  Taxes: buy %d%%, sell %d%%\n", report.Taxes.BuyPercent, report.Taxes.SellPercent)
	fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(LiquidityStatus(report.Liquidity), "\n", "\n  "))
	for _, m := range report.Matches {
		fmt.Fprintf(w, "  [%s] %s: %s\n", m.Category.Kind, m.Category.Label, strings.Join(m.Matched, ", "))
	}
	if n := result.Narrative; n != nil && n.Enabled && n.SummaryMD != "" {
		fmt.Fprintf(w, "\n  Narrative (%s):\n  %s\n", n.Provider, strings.ReplaceAll(n.SummaryMD, "\n", "\n  "))
	}
}

// Headline describes a score the way the banner does
func Headline(score model.RiskScore) string {
	switch score.Band {
	case model.BandSafe:
		return "🟢 **No risky signatures found** ✅"
	case model.BandLow:
		return fmt.Sprintf("🟡 **Low risk (%d)** ⚠️", score.Value)
	case model.BandMedium:
		return fmt.Sprintf("🟠 **Medium risk (%d)** ⚠️", score.Value)
	default:
		return fmt.Sprintf("🔴 **High risk (%d)** 🚨", score.Value)
	}
}

// LiquidityStatus describes the liquidity lock check
func LiquidityStatus(l model.LiquidityLockResult) string {
	if !l.Locked {
		return "🚨 No known liquidity lock found ⚠️"
	}
	return fmt.Sprintf("✅ Liquidity locked with %s 🔒\nLock address found: `%s`", l.Provider, catalog.ChecksumAddress(l.Address))
}
