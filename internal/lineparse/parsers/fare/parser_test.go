package fare

import (
	"testing"

	"pnr_parser/internal/lineparse"
	"pnr_parser/internal/pnr"
)

func parseFare(t *testing.T, text string) *Result {
	t.Helper()
	parser := &Parser{}
	res := parser.Parse(&lineparse.Line{Text: text})
	if res == nil {
		t.Fatalf("Expected a fare from %q", text)
	}
	result, ok := res.(*Result)
	if !ok {
		t.Fatalf("Expected *Result, got %T", res)
	}
	return result
}

func TestFareWithoutLabel(t *testing.T) {
	result := parseFare(t, "tarifa usd 2529.00 + txs usd 66.00")

	if result.FareClass != "Tarifa" {
		t.Errorf("Expected default label Tarifa, got %s", result.FareClass)
	}
	if result.PaxType != pnr.PaxAdult {
		t.Errorf("Expected ADT, got %s", result.PaxType)
	}
	if result.BaseFare.String() != "2529" {
		t.Errorf("Expected base 2529, got %s", result.BaseFare)
	}
	if result.BaseTaxes.String() != "66" {
		t.Errorf("Expected taxes 66, got %s", result.BaseTaxes)
	}
	if !result.IncludeInPDF {
		t.Error("Parsed fares default to included")
	}
}

func TestFareLocaleDecimalSeparators(t *testing.T) {
	a := parseFare(t, "tarifa usd 2.529,00 + txs usd 66,00")
	b := parseFare(t, "tarifa usd 2529.00 + txs usd 66.00")

	if !a.BaseFare.Equal(b.BaseFare) {
		t.Errorf("Expected equal base fares, got %s vs %s", a.BaseFare, b.BaseFare)
	}
	if !a.BaseTaxes.Equal(b.BaseTaxes) {
		t.Errorf("Expected equal taxes, got %s vs %s", a.BaseTaxes, b.BaseTaxes)
	}
}

func TestFareLabelVerbatim(t *testing.T) {
	result := parseFare(t, "tarifa usd 4100.00 + txs usd 120.00 *Executiva Flex")

	if result.FareClass != "Executiva Flex" {
		t.Errorf("Expected label kept verbatim, got %q", result.FareClass)
	}
	if result.PaxType != pnr.PaxAdult {
		t.Errorf("Expected ADT, got %s", result.PaxType)
	}
}

func TestFareUSDOnlySpelling(t *testing.T) {
	result := parseFare(t, "usd 1890.00 + txs usd 70.00 *Eco")

	if result.FareClass != "Eco" {
		t.Errorf("Expected label Eco, got %s", result.FareClass)
	}
	if result.BaseFare.String() != "1890" {
		t.Errorf("Expected base 1890, got %s", result.BaseFare)
	}
}

func TestFarePaxTypeFromLabel(t *testing.T) {
	cases := []struct {
		line string
		want pnr.PaxType
	}{
		{"tarifa usd 2529.00 + txs usd 66.00 *Exe ADT", pnr.PaxAdult},
		{"tarifa usd 1890.00 + txs usd 66.00 *Exe CHD", pnr.PaxChild},
		{"tarifa usd 1900.00 + txs usd 66.00 *crianca", pnr.PaxChild},
		{"tarifa usd 250.00 + txs usd 66.00 *INF", pnr.PaxInfant},
		{"tarifa usd 250.00 + txs usd 66.00 *bebe", pnr.PaxInfant},
	}
	for _, c := range cases {
		result := parseFare(t, c.line)
		if result.PaxType != c.want {
			t.Errorf("%q: expected pax type %s, got %s", c.line, c.want, result.PaxType)
		}
	}
}

func TestFareRejectsNonFareLines(t *testing.T) {
	parser := &Parser{}
	for _, text := range []string{
		"AZ 679 25NOV GRUFCO HS2 2040 #1200",
		"pagamento net net",
		"tarifa usd 2529.00",
		"random note about usd txs prices",
	} {
		if res := parser.Parse(&lineparse.Line{Text: text}); res != nil {
			t.Errorf("Expected nil for %q, got %+v", text, res)
		}
	}
}

func TestFareQuickCheck(t *testing.T) {
	parser := &Parser{}
	if !parser.QuickCheck("TARIFA USD 100.00 + TXS USD 10.00") {
		t.Error("QuickCheck should be case-insensitive")
	}
	if parser.QuickCheck("AZ 679 25NOV GRUFCO HS2 2040 #1200") {
		t.Error("QuickCheck should reject segment lines")
	}
}
