// Package baggage recognizes checked-baggage allowance lines of the form
// "2pc 23kg" with an optional "/class" scope suffix, e.g. "02pc 32kg/Exe".
package baggage

import (
	"strconv"
	"strings"
	"sync"

	"pnr_parser/internal/lineparse"
	"pnr_parser/internal/patterns"
	"pnr_parser/internal/pnr"
)

// Formats defines the accepted baggage line shape.
var Formats = []patterns.Format{
	{
		Name:    "baggage_pc_kg",
		Pattern: `(?P<pieces>{PIECES})\s*pc\s+(?P<kg>{KG})\s*kg(?:\s*/\s*(?P<class>\S+))?`,
		Fields:  []string{"pieces", "kg", "class"},
	},
}

// Result wraps one parsed baggage allowance.
type Result struct {
	pnr.Baggage
}

func (r *Result) Kind() string { return "baggage" }

// Parser recognizes baggage allowance lines.
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

func (p *Parser) Name() string  { return "baggage" }
func (p *Parser) Priority() int { return 30 }

func (p *Parser) QuickCheck(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "pc") && strings.Contains(lower, "kg")
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

	pieces, err := strconv.Atoi(match.Captures["pieces"])
	if err != nil || pieces < 0 {
		return nil
	}
	kg, err := strconv.Atoi(match.Captures["kg"])
	if err != nil || kg < 0 {
		return nil
	}

	return &Result{Baggage: pnr.Baggage{
		FareClass: match.Captures["class"],
		Pieces:    pieces,
		PieceKg:   kg,
	}}
}
