package payment

import (
	"testing"

	"pnr_parser/internal/lineparse"
)

func TestPaymentPrefixLines(t *testing.T) {
	parser := &Parser{}
	cases := []string{
		"pagamento em ate 6x no cartao",
		"Pgto net net",
		"Forma de pagamento: faturado",
		"PAGTO a vista",
		"payment by invoice",
	}
	for _, text := range cases {
		res := parser.Parse(&lineparse.Line{Text: text})
		result, ok := res.(*Result)
		if !ok {
			t.Errorf("%q: expected *Result, got %T", text, res)
			continue
		}
		if result.Terms != text {
			t.Errorf("%q: terms must be kept verbatim, got %q", text, result.Terms)
		}
	}
}

func TestPaymentNetNetAnywhere(t *testing.T) {
	parser := &Parser{}
	res := parser.Parse(&lineparse.Line{Text: "valores NET NET sem comissao"})
	if res == nil {
		t.Fatal("Expected a payment result for a net net line")
	}
}

func TestPaymentInstallmentPhrase(t *testing.T) {
	parser := &Parser{}
	for _, text := range []string{
		"parcelado em 10x sem juros",
		"parcela 6x no cartao",
	} {
		if parser.Parse(&lineparse.Line{Text: text}) == nil {
			t.Errorf("Expected a payment result for %q", text)
		}
	}
}

func TestPaymentRejectsOtherLines(t *testing.T) {
	parser := &Parser{}
	for _, text := range []string{
		"AZ 679 25NOV GRUFCO HS2 2040 #1200",
		"tarifa usd 2529.00 + txs usd 66.00",
		"internet wifi a bordo",
		"uma nota qualquer",
	} {
		if res := parser.Parse(&lineparse.Line{Text: text}); res != nil {
			t.Errorf("Expected nil for %q, got %+v", text, res)
		}
	}
}

func TestPaymentFirstWinsIsCallerPolicy(t *testing.T) {
	// The parser itself accepts every payment line; keeping only the first
	// one per option is the assembler's job.
	parser := &Parser{}
	if parser.Parse(&lineparse.Line{Text: "pagamento 1"}) == nil {
		t.Fatal("Expected a result")
	}
	if parser.Parse(&lineparse.Line{Text: "pagamento 2"}) == nil {
		t.Fatal("Expected a result")
	}
}
