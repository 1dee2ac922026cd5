package extract

import (
	"regexp"
	"strconv"

	"github.com/ppiankov/rugscan/internal/model"
)

// TaxExtractor pulls declared launch tax literals out of contract text
type TaxExtractor struct {
	buyPattern  *regexp.Regexp
	sellPattern *regexp.Regexp
}

// NewTaxExtractor builds `<identifier>\s*=\s*(\d+)` patterns for both sides
func NewTaxExtractor(ids model.TaxIdentifiers) *TaxExtractor {
	return &TaxExtractor{
		buyPattern:  assignmentPattern(ids.Buy),
		sellPattern: assignmentPattern(ids.Sell),
	}
}

// assignmentPattern matches ASCII digits and ASCII whitespace only. Solidity
// number literals and separators are ASCII, so a literal written with other
// Unicode digits (e.g. Arabic-Indic) is not a tax declaration and reads as 0.
func assignmentPattern(identifier string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(identifier) + `\s*=\s*(\d+)`)
}

// Extract returns the first buy and sell assignment found, 0 when absent
func (e *TaxExtractor) Extract(text string) model.TaxRates {
	return model.TaxRates{
		BuyPercent:  firstInt(e.buyPattern, text),
		SellPercent: firstInt(e.sellPattern, text),
	}
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// Out of range for int; treat like an absent literal.
		return 0
	}
	return n
}
