package model

// Report is the presentation-agnostic result of one analysis.
// It carries no timestamps so identical input yields an identical report.
type Report struct {
	CatalogVersion string              `json:"catalog_version"`
	Score          RiskScore           `json:"score"`
	Taxes          TaxRates            `json:"taxes"`
	Liquidity      LiquidityLockResult `json:"liquidity"`
	Matches        []MatchResult       `json:"matches"`
}

// MatchResult lists the signatures of one category found in the text.
// Matched follows catalog signature order, not occurrence order.
type MatchResult struct {
	Category PatternCategory `json:"category"`
	Matched  []string        `json:"matched"`
}

// TaxRates holds the declared buy/sell tax percentages (0 when absent)
type TaxRates struct {
	BuyPercent  int `json:"buy_tax_percent"`
	SellPercent int `json:"sell_tax_percent"`
}

// LiquidityLockResult reports the first known custodian found in the text
type LiquidityLockResult struct {
	Locked   bool   `json:"locked"`
	Provider string `json:"provider,omitempty"`
	Address  string `json:"address,omitempty"`
}

// RiskScore is the weighted score and its band
type RiskScore struct {
	Value             int    `json:"value"`
	Band              Band   `json:"band"`
	Severity          string `json:"severity"`
	Color             string `json:"color"`
	SuspiciousMatches int    `json:"suspicious_matches"` // Matched signatures across suspicious categories
	BlacklistMatched  bool   `json:"blacklist_matched"`
}

// Band is the categorical severity derived from the score
type Band string

const (
	BandSafe   Band = "safe"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Severity returns the caller-visible severity tag for the band
func (b Band) Severity() string {
	switch b {
	case BandSafe:
		return "info"
	case BandLow, BandMedium:
		return "warning"
	case BandHigh:
		return "critical"
	default:
		return "unknown"
	}
}

// Color returns a display colour hint for the band
func (b Band) Color() string {
	switch b {
	case BandSafe:
		return "#28a745"
	case BandLow:
		return "#ffc107"
	case BandMedium:
		return "#fd7e14"
	case BandHigh:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

// MatchedSignatures returns every matched signature in report order.
// A signature shared by two matched categories appears twice.
func (r *Report) MatchedSignatures() []string {
	var out []string
	for _, m := range r.Matches {
		out = append(out, m.Matched...)
	}
	return out
}
