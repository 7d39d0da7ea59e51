// Package extractor collects the code tokens from parsed options that need
// catalog resolution. It is storage-agnostic; callers feed its output to the
// resolver.
package extractor

import (
	"strings"

	"pnr_parser/internal/patterns"
	"pnr_parser/internal/pnr"
	"pnr_parser/internal/resolver"
)

// Tokens returns the distinct carrier and airport tokens of a parsed
// document, in first-seen order. Tokens that are obviously booking-text
// vocabulary rather than codes are dropped before they can pollute the
// unknown-code ledger.
func Tokens(options []pnr.Option) []resolver.Token {
	seen := make(map[string]bool)
	var tokens []resolver.Token

	add := func(raw string, kind pnr.TokenKind) {
		token := strings.TrimSpace(raw)
		if token == "" {
			return
		}
		key := string(kind) + ":" + strings.ToLower(token)
		if seen[key] {
			return
		}
		switch kind {
		case pnr.TokenAirline:
			if !patterns.IsLikelyAirlineCode(token) {
				return
			}
		case pnr.TokenAirport:
			if !patterns.IsLikelyAirportCode(token) {
				return
			}
		}
		seen[key] = true
		tokens = append(tokens, resolver.Token{Token: token, Kind: kind})
	}

	for _, opt := range options {
		for _, seg := range opt.Segments {
			add(seg.Carrier, pnr.TokenAirline)
			add(seg.DepAirport, pnr.TokenAirport)
			add(seg.ArrAirport, pnr.TokenAirport)
		}
	}

	return tokens
}
