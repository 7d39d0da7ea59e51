// Package payment recognizes payment-terms lines.
//
// A line is a payment line if it starts with a payment-prefix keyword,
// contains a "net net" phrase, or contains an installment phrase
// ("parcela Nx" / "parcelado em Nx"). The line is kept verbatim as the
// human-readable payment terms string.
package payment

import (
	"regexp"
	"strings"

	"pnr_parser/internal/lineparse"
)

// Result carries one payment-terms line, verbatim.
type Result struct {
	Terms string `json:"terms"`
}

func (r *Result) Kind() string { return "payment" }

// Parser recognizes payment-terms lines.
type Parser struct{}

var paymentPrefixes = []string{
	"pagamento",
	"pgto",
	"forma de pagamento",
	"pagto",
	"payment",
}

var (
	netNetRe      = regexp.MustCompile(`(?i)\bnet\s+net\b`)
	installmentRe = regexp.MustCompile(`(?i)\bparcela(?:do)?\s+(?:em\s+)?\d{1,2}x\b`)
)

func init() {
	lineparse.Register(&Parser{})
}

func (p *Parser) Name() string  { return "payment" }
func (p *Parser) Priority() int { return 40 }

func (p *Parser) QuickCheck(text string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range paymentPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.Contains(lower, "net") || strings.Contains(lower, "parcela")
}

func (p *Parser) Parse(line *lineparse.Line) lineparse.Result {
	text := strings.TrimSpace(line.Text)
	lower := strings.ToLower(text)

	for _, prefix := range paymentPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return &Result{Terms: text}
		}
	}
	if netNetRe.MatchString(text) || installmentRe.MatchString(text) {
		return &Result{Terms: text}
	}
	return nil
}
