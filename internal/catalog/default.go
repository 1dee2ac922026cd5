// Package catalog provides the pattern catalog: the built-in default and
// loading/validation of YAML overrides.
package catalog

import "github.com/ppiankov/rugscan/internal/model"

// DefaultVersion identifies the built-in catalog
const DefaultVersion = "2025.1"

// Default returns a fresh copy of the built-in catalog.
//
// The initial buy/sell tax variables are not signatures here: their values
// are reported by the tax extractor, and only the final/reduction tax
// variables count as tax manipulation. _finalSellTax is deliberately listed
// in both a suspicious and a blacklist category.
func Default() *model.Catalog {
	return &model.Catalog{
		Version: DefaultVersion,
		Categories: []model.PatternCategory{
			{
				Label:      "Suspicious transfers",
				Kind:       model.KindSuspicious,
				Signatures: []string{"transferFrom", "approve", "setApprovalForAll"},
			},
			{
				Label:      "Dangerous external calls",
				Kind:       model.KindSuspicious,
				Signatures: []string{"delegatecall", "callcode", "selfdestruct", "tx.origin", "assembly", "create2"},
			},
			{
				Label:      "Ownership control",
				Kind:       model.KindSuspicious,
				Signatures: []string{"renounceOwnership", "transferOwnership"},
			},
			{
				Label:      "Tax manipulation",
				Kind:       model.KindSuspicious,
				Signatures: []string{"_finalBuyTax", "_finalSellTax", "_reduceBuyTaxAt", "_reduceSellTaxAt"},
			},
			{
				Label:      "Trading restriction (possible honeypot)",
				Kind:       model.KindSuspicious,
				Signatures: []string{"enableTrading", "openTrading", "tradingOpen", "removeLimits"},
			},
			{
				Label:      "Tax routed to a fixed wallet",
				Kind:       model.KindSuspicious,
				Signatures: []string{"_taxWallet", "sendEthFeeTo"},
			},
			{
				Label:      "Swap manipulation",
				Kind:       model.KindSuspicious,
				Signatures: []string{"swapTokensForEth", "swapExactTokensForETHSupportingFeeOnTransferTokens"},
			},
			{
				Label:      "Blacklisted addresses",
				Kind:       model.KindBlacklist,
				Signatures: []string{"_isBlacklisted", "blacklist", "addBlacklist", "removeBlacklist", "bots"},
			},
			{
				Label:      "Anti-bot trading rules",
				Kind:       model.KindBlacklist,
				Signatures: []string{"isBot", "canSell", "_maxTxAmount", "_maxWalletSize"},
			},
			{
				Label:      "Time-gated trading (honeypot)",
				Kind:       model.KindBlacklist,
				Signatures: []string{"_finalSellTax", "_preventSwapBefore"},
			},
		},
		LiquidityLocks: []model.LiquidityProvider{
			{Name: "Unicrypt", Address: "0x8bCb14797B82C56821C8f36aE1b19D0A1cB5e98F"},
			{Name: "Team Finance", Address: "0xB41f5F9a1734b48E2cb2FF3fA35e1D1B8A21A66E"},
			{Name: "DxSale", Address: "0xC0A4aCc3734e08A96eB58B27d15cB8E3eC8DdBde"},
		},
		Weights: DefaultWeights(),
		Taxes:   DefaultTaxIdentifiers(),
	}
}

// DefaultWeights returns 10 per suspicious signature and a flat 20 for blacklists
func DefaultWeights() model.Weights {
	return model.Weights{Signature: 10, Blacklist: 20}
}

// DefaultTaxIdentifiers returns the conventional launch-tax variable names
func DefaultTaxIdentifiers() model.TaxIdentifiers {
	return model.TaxIdentifiers{Buy: "_initialBuyTax", Sell: "_initialSellTax"}
}
