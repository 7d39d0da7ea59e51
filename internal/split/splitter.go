// Package split divides raw booking text into per-option blocks.
//
// Consolidator emails carry one or more pricing options separated by ad-hoc
// separator lines (runs of '=' or '-', a bare '+', or the literal word "OU").
// When no separators are present the text is split on runs of blank lines,
// and as a last resort the whole text is treated as a single option.
package split

import (
	"regexp"
	"strings"
)

var (
	sepEquals = regexp.MustCompile(`^=+$`)
	sepDashes = regexp.MustCompile(`^-{2,}$`)
)

// Config controls optional splitter behaviour.
type Config struct {
	// StripMetadata removes the first two lines of each block when the text
	// has no explicit separator lines. Consolidator dumps often lead with a
	// confidentiality notice and a technical header.
	StripMetadata bool
}

// IsSeparator reports whether a trimmed line is an option separator.
func IsSeparator(line string) bool {
	line = strings.TrimSpace(line)
	if line == "+" || strings.EqualFold(line, "OU") {
		return true
	}
	return sepEquals.MatchString(line) || sepDashes.MatchString(line)
}

// Split divides raw text into option blocks with default configuration.
func Split(text string) []string {
	return SplitWith(text, Config{})
}

// SplitWith divides raw text into option blocks.
//
// It never fails: unrecognised structure degrades to coarser splitting, and
// non-blank input always yields at least one block. Blank input yields no
// blocks, which downstream turns into an empty-but-valid option list.
func SplitWith(text string, cfg Config) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	if hasSeparators(lines) {
		return splitOnSeparators(lines)
	}

	blocks := splitOnBlankRuns(lines)
	if cfg.StripMetadata {
		blocks = stripMetadataLines(blocks)
	}
	if len(blocks) > 0 {
		return blocks
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return []string{trimmed}
	}
	return nil
}

func hasSeparators(lines []string) bool {
	for _, l := range lines {
		if IsSeparator(l) {
			return true
		}
	}
	return false
}

// splitOnSeparators collects the maximal line runs between separator lines.
// Empty runs are dropped.
func splitOnSeparators(lines []string) []string {
	var blocks []string
	var run []string

	flush := func() {
		block := strings.TrimSpace(strings.Join(run, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		run = run[:0]
	}

	for _, l := range lines {
		if IsSeparator(l) {
			flush()
			continue
		}
		run = append(run, l)
	}
	flush()

	return blocks
}

// splitOnBlankRuns splits on two-or-more consecutive blank lines.
func splitOnBlankRuns(lines []string) []string {
	var blocks []string
	var run []string
	blanks := 0

	flush := func() {
		block := strings.TrimSpace(strings.Join(run, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		run = run[:0]
	}

	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blanks++
			if blanks >= 2 {
				flush()
				continue
			}
			run = append(run, l)
			continue
		}
		blanks = 0
		run = append(run, l)
	}
	flush()

	return blocks
}

// stripMetadataLines drops the first two lines of each block, keeping the
// block only if something remains. Blocks too short to carry both a header
// and content are left untouched.
func stripMetadataLines(blocks []string) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines := strings.Split(b, "\n")
		if len(lines) <= 2 {
			out = append(out, b)
			continue
		}
		stripped := strings.TrimSpace(strings.Join(lines[2:], "\n"))
		if stripped != "" {
			out = append(out, stripped)
		} else {
			out = append(out, b)
		}
	}
	return out
}
