package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/rugscan/internal/catalog"
	"github.com/ppiankov/rugscan/internal/extract"
	"github.com/ppiankov/rugscan/internal/model"
	"github.com/ppiankov/rugscan/internal/score"
)

// ErrInvalidInput is returned when no contract code remains after normalization
var ErrInvalidInput = errors.New("invalid input: no contract code found")

// Analyzer runs the matching-and-scoring engine over contract text.
// It holds only read-only state and is safe for concurrent use.
type Analyzer struct {
	catalog   *model.Catalog
	matcher   *extract.CategoryMatcher
	taxes     *extract.TaxExtractor
	liquidity *extract.LiquidityChecker
	scorer    *score.Scorer
}

// NewAnalyzer validates the catalog and builds an analyzer over a private copy of it
func NewAnalyzer(cat *model.Catalog) (*Analyzer, error) {
	if err := catalog.Validate(cat); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	frozen := cloneCatalog(cat)

	return &Analyzer{
		catalog:   frozen,
		matcher:   extract.NewCategoryMatcher(frozen.Categories),
		taxes:     extract.NewTaxExtractor(frozen.Taxes),
		liquidity: extract.NewLiquidityChecker(frozen.LiquidityLocks),
		scorer:    score.NewScorer(frozen.Weights),
	}, nil
}

// Analyze normalizes raw source and assembles the report
func (a *Analyzer) Analyze(raw string) (*model.Report, error) {
	text := extract.Normalize(raw)
	if text == "" {
		return nil, ErrInvalidInput
	}

	matches := a.matcher.Match(text)

	return &model.Report{
		CatalogVersion: a.catalog.Version,
		Score:          a.scorer.Calculate(matches),
		Taxes:          a.taxes.Extract(text),
		Liquidity:      a.liquidity.Check(text),
		Matches:        matches,
	}, nil
}

// Catalog returns a copy of the catalog the analyzer was built with
func (a *Analyzer) Catalog() *model.Catalog {
	return cloneCatalog(a.catalog)
}

func cloneCatalog(cat *model.Catalog) *model.Catalog {
	out := *cat
	out.Categories = make([]model.PatternCategory, len(cat.Categories))
	for i, c := range cat.Categories {
		c.Signatures = append([]string(nil), c.Signatures...)
		out.Categories[i] = c
	}
	out.LiquidityLocks = append([]model.LiquidityProvider(nil), cat.LiquidityLocks...)
	return &out
}
