package fare

import (
	"strings"
	"sync"

	"pnr_parser/internal/lineparse"
	"pnr_parser/internal/patterns"
	"pnr_parser/internal/pnr"
)

// defaultLabel is used when a fare line carries no '*label' suffix.
const defaultLabel = "Tarifa"

// Result wraps one parsed fare line.
type Result struct {
	pnr.Fare
}

func (r *Result) Kind() string { return "fare" }

// Parser recognizes fare lines.
type Parser struct{}

var (
	grokCompiler *patterns.Compiler
	grokOnce     sync.Once
	grokErr      error
)

func getCompiler() (*patterns.Compiler, error) {
	grokOnce.Do(func() {
		grokCompiler = patterns.NewCompiler(Formats, nil)
		grokErr = grokCompiler.Compile()
	})
	return grokCompiler, grokErr
}

func init() {
	lineparse.Register(&Parser{})
}

func (p *Parser) Name() string  { return "fare" }
func (p *Parser) Priority() int { return 20 }

func (p *Parser) QuickCheck(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "usd") && strings.Contains(lower, "txs")
}

func (p *Parser) Parse(line *lineparse.Line) lineparse.Result {
	compiler, err := getCompiler()
	if err != nil {
		return nil
	}

	match := compiler.Parse(line.Text)
	if match == nil {
		return nil
	}

	base, err := patterns.ParseAmount(match.Captures["base"])
	if err != nil {
		return nil
	}
	taxes, err := patterns.ParseAmount(match.Captures["taxes"])
	if err != nil {
		return nil
	}

	label := strings.TrimSpace(match.GetCapture("label", defaultLabel))

	return &Result{Fare: pnr.Fare{
		FareClass:    label,
		PaxType:      paxTypeFor(label),
		BaseFare:     base,
		BaseTaxes:    taxes,
		IncludeInPDF: true,
	}}
}

// paxTypeFor infers the passenger type from label keywords; absence implies
// an adult fare.
func paxTypeFor(label string) pnr.PaxType {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "inf") || strings.Contains(lower, "bebe") || strings.Contains(lower, "bebê"):
		return pnr.PaxInfant
	case strings.Contains(lower, "chd") || strings.Contains(lower, "child") ||
		strings.Contains(lower, "crianca") || strings.Contains(lower, "criança"):
		return pnr.PaxChild
	default:
		return pnr.PaxAdult
	}
}
