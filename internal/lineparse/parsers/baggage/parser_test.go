package baggage

import (
	"testing"

	"pnr_parser/internal/lineparse"
)

func parseBaggage(t *testing.T, text string) *Result {
	t.Helper()
	parser := &Parser{}
	res := parser.Parse(&lineparse.Line{Text: text})
	if res == nil {
		t.Fatalf("Expected a baggage result from %q", text)
	}
	result, ok := res.(*Result)
	if !ok {
		t.Fatalf("Expected *Result, got %T", res)
	}
	return result
}

func TestBaggageBasic(t *testing.T) {
	result := parseBaggage(t, "2pc 23kg")

	if result.Pieces != 2 {
		t.Errorf("Expected 2 pieces, got %d", result.Pieces)
	}
	if result.PieceKg != 23 {
		t.Errorf("Expected 23kg, got %d", result.PieceKg)
	}
	if result.FareClass != "" {
		t.Errorf("Expected no class scope, got %q", result.FareClass)
	}
}

func TestBaggageWithClassScope(t *testing.T) {
	result := parseBaggage(t, "02pc 32kg/Exe")

	if result.Pieces != 2 {
		t.Errorf("Expected 2 pieces, got %d", result.Pieces)
	}
	if result.PieceKg != 32 {
		t.Errorf("Expected 32kg, got %d", result.PieceKg)
	}
	if result.FareClass != "Exe" {
		t.Errorf("Expected class Exe, got %q", result.FareClass)
	}
}

func TestBaggageSpacingVariants(t *testing.T) {
	for _, text := range []string{
		"2 pc 23 kg",
		"franquia: 2pc 23kg / executiva",
	} {
		result := parseBaggage(t, text)
		if result.Pieces != 2 || result.PieceKg != 23 {
			t.Errorf("%q: got %dpc %dkg", text, result.Pieces, result.PieceKg)
		}
	}
}

func TestBaggageRejectsOtherLines(t *testing.T) {
	parser := &Parser{}
	for _, text := range []string{
		"AZ 679 25NOV GRUFCO HS2 2040 #1200",
		"tarifa usd 2529.00 + txs usd 66.00",
		"pacote com kg de cafe",
	} {
		if res := parser.Parse(&lineparse.Line{Text: text}); res != nil {
			t.Errorf("Expected nil for %q, got %+v", text, res)
		}
	}
}
