package model

// Narrative is an optional LLM-written explanation of a report.
// It is produced after scoring and never feeds back into the score.
type Narrative struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict"`               // Whether cited signatures were verified against matches
	SummaryMD string   `json:"summary_md,omitempty"` // Markdown narrative
	Warnings  []string `json:"warnings,omitempty"`
}
