// Package assemble turns raw booking text into structured pricing options.
//
// It wires the splitter and the line recognizer registry together: each
// option block's lines are dispatched through the registry in priority order,
// and whatever no recognizer claims is accumulated as free-text notes. The
// whole path is pure and synchronous; parsing the same text with the same
// reference clock yields identical results.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"pnr_parser/internal/lineparse"
	_ "pnr_parser/internal/lineparse/parsers" // register all line parsers
	"pnr_parser/internal/lineparse/parsers/baggage"
	"pnr_parser/internal/lineparse/parsers/fare"
	"pnr_parser/internal/lineparse/parsers/payment"
	"pnr_parser/internal/lineparse/parsers/segment"
	"pnr_parser/internal/pnr"
	"pnr_parser/internal/split"
)

// Config controls assembly behaviour.
type Config struct {
	// StripMetadata is forwarded to the splitter: drop the first two
	// metadata lines of each block when no explicit separators exist.
	StripMetadata bool

	// Registry defaults to the global line parser registry.
	Registry *lineparse.Registry
}

// Parse splits raw text into options with default configuration.
// "now" anchors year-rollover date resolution; freeze it for deterministic
// output.
func Parse(text string, now time.Time) []pnr.Option {
	return ParseWith(text, now, Config{})
}

// ParseWith splits raw text into option blocks and assembles one structured
// option per block. It never fails: empty or unrecognisable input yields an
// empty (but valid) option list.
func ParseWith(text string, now time.Time, cfg Config) []pnr.Option {
	reg := cfg.Registry
	if reg == nil {
		reg = lineparse.Default()
	}
	reg.Sort()

	blocks := split.SplitWith(text, split.Config{StripMetadata: cfg.StripMetadata})

	options := make([]pnr.Option, 0, len(blocks))
	for i, block := range blocks {
		opt := assembleBlock(block, now, reg)
		opt.Label = fmt.Sprintf("Option %d", i+1)
		options = append(options, opt)
	}
	return options
}

func assembleBlock(block string, now time.Time, reg *lineparse.Registry) pnr.Option {
	opt := pnr.Option{
		Segments: []pnr.Segment{},
		Fares:    []pnr.Fare{},
	}

	opt.NumParcelas = extractParcelas(block)
	opt.RavPercent = extractPercent(ravRe, block)
	opt.IncentivoPercent = extractPercent(incentivoRe, block)
	opt.FeeUSD = extractFeeUSD(block)
	opt.ChangePenalty = extractChangePenalty(block)

	var notes []string
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || split.IsSeparator(line) {
			continue
		}

		result := reg.Dispatch(&lineparse.Line{Text: line, Now: now})
		switch r := result.(type) {
		case *segment.Result:
			opt.Segments = append(opt.Segments, r.Segment)
		case *fare.Result:
			opt.Fares = append(opt.Fares, r.Fare)
		case *baggage.Result:
			opt.Baggage = append(opt.Baggage, r.Baggage)
		case *payment.Result:
			// First payment line wins; later ones are dropped.
			if opt.PaymentTerms == "" {
				opt.PaymentTerms = r.Terms
			}
		case nil:
			// Unrecognised non-empty lines become standalone notes, except
			// the line already captured as the change penalty.
			if line != opt.ChangePenalty {
				notes = append(notes, line)
			}
		}
	}

	opt.Notes = strings.Join(notes, "; ")
	return opt
}
