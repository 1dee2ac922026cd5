package extract

import (
	"strings"

	"github.com/ppiankov/rugscan/internal/model"
)

// LiquidityChecker looks for known liquidity-lock custodian addresses
type LiquidityChecker struct {
	providers []model.LiquidityProvider
	lowered   []string
}

// NewLiquidityChecker creates a checker over the providers in the given order
func NewLiquidityChecker(providers []model.LiquidityProvider) *LiquidityChecker {
	lowered := make([]string, len(providers))
	for i, p := range providers {
		lowered[i] = strings.ToLower(p.Address)
	}
	return &LiquidityChecker{
		providers: providers,
		lowered:   lowered,
	}
}

// Check returns the first provider, in catalog order, whose address appears
// in text under case-insensitive comparison
func (c *LiquidityChecker) Check(text string) model.LiquidityLockResult {
	lower := strings.ToLower(text)
	for i, p := range c.providers {
		if strings.Contains(lower, c.lowered[i]) {
			return model.LiquidityLockResult{
				Locked:   true,
				Provider: p.Name,
				Address:  p.Address,
			}
		}
	}
	return model.LiquidityLockResult{}
}
