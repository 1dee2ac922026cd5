package adapters

// PlainAdapter is the fallback adapter: the body already is contract source
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain-text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle always returns true (fallback adapter)
func (a *PlainAdapter) CanHandle(location string, contentType string) bool {
	return true
}

// ExtractSource returns the body unchanged
func (a *PlainAdapter) ExtractSource(body []byte) (string, error) {
	return string(body), nil
}
