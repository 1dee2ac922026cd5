package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ppiankov/rugscan/internal/model"
	"gopkg.in/yaml.v3"
)

// Load reads a catalog override from a YAML file.
// An empty path returns the built-in default.
func Load(path string) (*model.Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalog.
// Sections left out of the document (weights, taxes, liquidity_locks,
// version) are taken from the built-in default; categories are required.
// Each weight defaults on its own, so a document may override just one.
func Parse(data []byte) (*model.Catalog, error) {
	cat := model.Catalog{Weights: DefaultWeights()}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	def := Default()
	if cat.Version == "" {
		cat.Version = def.Version + "+custom"
	}
	if cat.LiquidityLocks == nil {
		cat.LiquidityLocks = def.LiquidityLocks
	}
	if cat.Taxes.Buy == "" {
		cat.Taxes.Buy = def.Taxes.Buy
	}
	if cat.Taxes.Sell == "" {
		cat.Taxes.Sell = def.Taxes.Sell
	}

	if err := Validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Marshal encodes a catalog as YAML
func Marshal(cat *model.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks a catalog for structural problems
func Validate(cat *model.Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog is nil")
	}
	if len(cat.Categories) == 0 {
		return fmt.Errorf("catalog has no categories")
	}

	seen := make(map[string]bool)
	for i, c := range cat.Categories {
		if c.Label == "" {
			return fmt.Errorf("category %d: empty label", i)
		}
		if seen[c.Label] {
			return fmt.Errorf("category %q: duplicate label", c.Label)
		}
		seen[c.Label] = true

		if !c.Kind.Valid() {
			return fmt.Errorf("category %q: unknown kind %q (want %s or %s)", c.Label, c.Kind, model.KindSuspicious, model.KindBlacklist)
		}
		if len(c.Signatures) == 0 {
			return fmt.Errorf("category %q: no signatures", c.Label)
		}
		for j, sig := range c.Signatures {
			if sig == "" {
				return fmt.Errorf("category %q: signature %d is empty", c.Label, j)
			}
		}
	}

	for i, p := range cat.LiquidityLocks {
		if p.Name == "" {
			return fmt.Errorf("liquidity lock %d: empty provider name", i)
		}
		if !common.IsHexAddress(p.Address) {
			return fmt.Errorf("liquidity lock %q: invalid address %q", p.Name, p.Address)
		}
	}

	if cat.Weights.Signature < 0 || cat.Weights.Blacklist < 0 {
		return fmt.Errorf("weights must be non-negative (signature=%d, blacklist=%d)", cat.Weights.Signature, cat.Weights.Blacklist)
	}
	if cat.Taxes.Buy == "" || cat.Taxes.Sell == "" {
		return fmt.Errorf("tax identifiers must not be empty")
	}

	return nil
}

// ChecksumAddress returns the EIP-55 form of a custodian address for display
func ChecksumAddress(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}
