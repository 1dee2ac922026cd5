package model

// CategoryKind determines how a category's matches contribute to the risk score
type CategoryKind string

const (
	KindSuspicious CategoryKind = "suspicious" // Each matched signature adds the signature weight
	KindBlacklist  CategoryKind = "blacklist"  // Any match adds the flat blacklist weight once
)

// Valid reports whether the kind is one the scorer understands
func (k CategoryKind) Valid() bool {
	return k == KindSuspicious || k == KindBlacklist
}

// PatternCategory is a named, ordered list of keyword signatures.
// Signatures may repeat across categories; they are never deduplicated.
type PatternCategory struct {
	Label      string       `json:"label" yaml:"label"`
	Kind       CategoryKind `json:"kind" yaml:"kind"`
	Signatures []string     `json:"signatures" yaml:"signatures"`
}

// LiquidityProvider is a known liquidity-lock custodian
type LiquidityProvider struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// Weights controls the contribution of matches to the risk score
type Weights struct {
	Signature int `json:"signature" yaml:"signature"` // Per matched suspicious signature
	Blacklist int `json:"blacklist" yaml:"blacklist"` // Once, if any blacklist category matched
}

// TaxIdentifiers names the variables whose numeric assignment declares the tax
type TaxIdentifiers struct {
	Buy  string `json:"buy_identifier" yaml:"buy_identifier"`
	Sell string `json:"sell_identifier" yaml:"sell_identifier"`
}

// Catalog is the versioned pattern configuration.
// It is built once at start-up and must not be mutated afterwards.
type Catalog struct {
	Version        string              `json:"version" yaml:"version"`
	Categories     []PatternCategory   `json:"categories" yaml:"categories"`
	LiquidityLocks []LiquidityProvider `json:"liquidity_locks" yaml:"liquidity_locks"`
	Weights        Weights             `json:"weights" yaml:"weights"`
	Taxes          TaxIdentifiers      `json:"taxes" yaml:"taxes"`
}

// CategoriesOfKind returns the categories of the given kind in catalog order
func (c *Catalog) CategoriesOfKind(kind CategoryKind) []PatternCategory {
	var out []PatternCategory
	for _, cat := range c.Categories {
		if cat.Kind == kind {
			out = append(out, cat)
		}
	}
	return out
}

// SignatureCount returns the total number of signatures across all categories
func (c *Catalog) SignatureCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Signatures)
	}
	return n
}
