package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// EtherscanAdapter reads the JSON returned by explorer `getsourcecode`
// endpoints (Etherscan and its BscScan/Basescan clones)
type EtherscanAdapter struct{}

// NewEtherscanAdapter creates a new explorer API adapter
func NewEtherscanAdapter() *EtherscanAdapter {
	return &EtherscanAdapter{}
}

type explorerResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Result  []explorerContract `json:"result"`
}

type explorerContract struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
}

// standardInput is the solc standard-JSON layout used for multi-file sources
type standardInput struct {
	Sources map[string]sourceFile `json:"sources"`
}

type sourceFile struct {
	Content string `json:"content"`
}

// Name returns the adapter name
func (a *EtherscanAdapter) Name() string {
	return "etherscan"
}

// CanHandle accepts JSON bodies and explorer API URLs
func (a *EtherscanAdapter) CanHandle(location string, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	lower := strings.ToLower(location)
	return strings.Contains(lower, "module=contract") && strings.Contains(lower, "action=getsourcecode")
}

// ExtractSource returns the verified source, joining multi-file sources in file-name order
func (a *EtherscanAdapter) ExtractSource(body []byte) (string, error) {
	var resp explorerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode explorer response: %w", err)
	}
	if resp.Status != "" && resp.Status != "1" {
		return "", fmt.Errorf("explorer error: %s", resp.Message)
	}
	if len(resp.Result) == 0 {
		return "", fmt.Errorf("explorer response has no result")
	}

	var parts []string
	for _, c := range resp.Result {
		parts = append(parts, expandSourceCode(c.SourceCode))
	}
	return strings.Join(parts, "\n"), nil
}

// expandSourceCode unpacks standard-JSON source bundles; plain source is returned as-is.
// Explorers wrap standard JSON in an extra pair of braces.
func expandSourceCode(src string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	if !strings.HasPrefix(trimmed, "{") {
		return src
	}

	var std standardInput
	if err := json.Unmarshal([]byte(trimmed), &std); err == nil && len(std.Sources) > 0 {
		return joinSources(std.Sources)
	}

	// Some explorers return the sources map without the standard-JSON envelope
	var flat map[string]sourceFile
	if err := json.Unmarshal([]byte(trimmed), &flat); err == nil && len(flat) > 0 {
		return joinSources(flat)
	}

	return src
}

func joinSources(sources map[string]sourceFile) string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	for i, name := range names {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(sources[name].Content)
	}
	return buf.String()
}
