package assemble

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"pnr_parser/internal/patterns"
)

// Block-level side metadata is extracted by independent single-pattern scans
// over the whole block text, first match or absent.
var (
	parcelasRe  = regexp.MustCompile(`(?i)parcela(?:do)?\s+(?:em\s+)?(\d{1,2})x`)
	ravRe       = regexp.MustCompile(`(?i)\brav\s*:?\s*(\d{1,3}(?:[.,]\d{1,2})?)\s*%`)
	incentivoRe = regexp.MustCompile(`(?i)\bincentivo\s*:?\s*(?:de\s+)?(\d{1,3}(?:[.,]\d{1,2})?)\s*%`)
	feeRe       = regexp.MustCompile(`(?i)\bfee\s+(?:de\s+)?usd\s+(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	penaltyRe   = regexp.MustCompile(`(?im)^.*\b(?:multa|penalid)\w*.*$`)
)

// extractParcelas returns the installment count, or nil if absent.
func extractParcelas(block string) *int {
	m := parcelasRe.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return nil
	}
	return &n
}

// extractPercent runs a percentage scan and returns the value, or nil.
func extractPercent(re *regexp.Regexp, block string) *float64 {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	d, err := patterns.ParseAmount(m[1])
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// extractFeeUSD returns the handling fee amount, or nil.
func extractFeeUSD(block string) *decimal.Decimal {
	m := feeRe.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	d, err := patterns.ParseAmount(m[1])
	if err != nil {
		return nil
	}
	return &d
}

// extractChangePenalty returns the first change-penalty line, verbatim.
func extractChangePenalty(block string) string {
	return strings.TrimSpace(penaltyRe.FindString(block))
}
