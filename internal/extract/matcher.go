package extract

import (
	"strings"

	"github.com/ppiankov/rugscan/internal/model"
)

// CategoryMatcher finds catalog signatures in normalized contract text
type CategoryMatcher struct {
	categories []model.PatternCategory
}

// NewCategoryMatcher creates a matcher over the given categories.
// The categories are read, never modified.
func NewCategoryMatcher(categories []model.PatternCategory) *CategoryMatcher {
	return &CategoryMatcher{categories: categories}
}

// Match evaluates every category in catalog order and returns those with
// at least one signature present
func (m *CategoryMatcher) Match(text string) []model.MatchResult {
	var results []model.MatchResult
	for _, cat := range m.categories {
		if res, ok := MatchCategory(text, cat); ok {
			results = append(results, res)
		}
	}
	return results
}

// MatchCategory collects the category's signatures that occur in text.
// Matching is case-sensitive substring containment with no word boundaries,
// so "transferFrom" is found inside "safeTransferFrom". The returned category
// owns its signature slice.
func MatchCategory(text string, cat model.PatternCategory) (model.MatchResult, bool) {
	var matched []string
	for _, sig := range cat.Signatures {
		if strings.Contains(text, sig) {
			matched = append(matched, sig)
		}
	}
	if len(matched) == 0 {
		return model.MatchResult{}, false
	}
	cat.Signatures = append([]string(nil), cat.Signatures...)
	return model.MatchResult{Category: cat, Matched: matched}, true
}
