// Package patterns provides shared regex building blocks and helper functions
// for booking-text parsing. This file contains the grok-style pattern compiler.
package patterns

import (
	"regexp"
	"strings"
)

// Format represents one recognisable line format with named capture groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler manages pattern compilation and matching for an ordered set of
// formats. Order matters: Parse returns the first matching format, so more
// specific formats must come before looser fallbacks.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
}

// NewCompiler creates a pattern compiler for the given formats.
// Local patterns overlay the global BasePatterns and may override them.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string),
		formats:      make([]Format, len(formats)),
	}

	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}

	copy(c.formats, formats)

	return c
}

// Compile expands all {PLACEHOLDER} references and compiles the regexes.
// Patterns are compiled case-insensitive: booking text mixes cases freely,
// but captures must stay verbatim (fare labels are preserved as written),
// so input is never upper-cased before matching.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		expanded := "(?i)" + c.expand(c.formats[i].Pattern)
		re, err := regexp.Compile(expanded)
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// expand replaces {PLACEHOLDER} with actual regex patterns.
func (c *Compiler) expand(pattern string) string {
	result := pattern
	for name, regex := range c.basePatterns {
		placeholder := "{" + name + "}"
		result = strings.ReplaceAll(result, placeholder, regex)
	}
	return result
}

// Match represents a successful format match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

// Parse attempts to match the line against all compiled formats.
// Returns the first successful match, or nil if no format matches.
func (c *Compiler) Parse(line string) *Match {
	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}

		m := format.Compiled.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		result := &Match{
			FormatName: format.Name,
			Captures:   make(map[string]string),
		}
		for i, name := range format.Compiled.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			result.Captures[name] = m[i]
		}
		return result
	}

	return nil
}

// FindAllMatches finds all occurrences of a named format in a block of text.
// Useful for block-level scans that can match multiple times (baggage lines).
func (c *Compiler) FindAllMatches(text string, formatName string) []map[string]string {
	var results []map[string]string

	for _, format := range c.formats {
		if format.Name != formatName || format.Compiled == nil {
			continue
		}

		matches := format.Compiled.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			captures := make(map[string]string)
			for i, name := range format.Compiled.SubexpNames() {
				if i == 0 || name == "" {
					continue
				}
				captures[name] = m[i]
			}
			results = append(results, captures)
		}
		break
	}

	return results
}

// MatchesAny reports whether any compiled format matches the line.
func (c *Compiler) MatchesAny(line string) bool {
	for _, format := range c.formats {
		if format.Compiled != nil && format.Compiled.MatchString(line) {
			return true
		}
	}
	return false
}

// GetCapture is a helper to safely get a capture value with a default.
func (m *Match) GetCapture(name string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if val, ok := m.Captures[name]; ok && val != "" {
		return val
	}
	return defaultVal
}
