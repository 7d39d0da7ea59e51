package extractor

import (
	"testing"

	"pnr_parser/internal/pnr"
)

func TestTokensDistinctFirstSeenOrder(t *testing.T) {
	options := []pnr.Option{
		{Segments: []pnr.Segment{
			{Carrier: "AZ", DepAirport: "GRU", ArrAirport: "FCO"},
			{Carrier: "AZ", DepAirport: "FCO", ArrAirport: "GRU"},
		}},
		{Segments: []pnr.Segment{
			{Carrier: "LA", DepAirport: "GRU", ArrAirport: "SCL"},
		}},
	}

	tokens := Tokens(options)

	want := []struct {
		token string
		kind  pnr.TokenKind
	}{
		{"AZ", pnr.TokenAirline},
		{"GRU", pnr.TokenAirport},
		{"FCO", pnr.TokenAirport},
		{"LA", pnr.TokenAirline},
		{"SCL", pnr.TokenAirport},
	}
	if len(tokens) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Token != w.token || tokens[i].Kind != w.kind {
			t.Errorf("Token %d: expected %s/%s, got %s/%s", i, w.token, w.kind, tokens[i].Token, tokens[i].Kind)
		}
	}
}

func TestTokensFiltersVocabulary(t *testing.T) {
	options := []pnr.Option{
		{Segments: []pnr.Segment{
			// "OU" and "USD" have code shape but are blocklisted vocabulary.
			{Carrier: "OU", DepAirport: "USD", ArrAirport: "GRU"},
		}},
	}

	tokens := Tokens(options)
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Token != "GRU" {
		t.Errorf("Expected GRU, got %s", tokens[0].Token)
	}
}

func TestTokensFiltersMalformedCodes(t *testing.T) {
	options := []pnr.Option{
		{Segments: []pnr.Segment{
			{Carrier: "2Z", DepAirport: "GR", ArrAirport: "TOOLONG"},
			{Carrier: "", DepAirport: "  ", ArrAirport: "GIG"},
		}},
	}

	tokens := Tokens(options)
	if len(tokens) != 1 || tokens[0].Token != "GIG" {
		t.Fatalf("Expected only GIG, got %v", tokens)
	}
}

func TestTokensDedupIsCaseInsensitive(t *testing.T) {
	options := []pnr.Option{
		{Segments: []pnr.Segment{
			{Carrier: "la", DepAirport: "GRU", ArrAirport: "SCL"},
			{Carrier: "LA", DepAirport: "gru", ArrAirport: "scl"},
		}},
	}

	tokens := Tokens(options)
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 distinct tokens, got %d: %v", len(tokens), tokens)
	}
}

func TestTokensEmptyInput(t *testing.T) {
	if tokens := Tokens(nil); len(tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", tokens)
	}
}
