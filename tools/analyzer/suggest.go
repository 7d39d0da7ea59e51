// Pattern suggestion logic for generating regex candidates from clusters of
// unrecognised booking-text lines.
package main

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PatternSuggestion represents a suggested regex pattern for a line cluster.
type PatternSuggestion struct {
	ClusterID       int      `json:"cluster_id"`
	LineCount       int      `json:"line_count"`
	SuggestedRegex  string   `json:"suggested_regex"`
	NamedGroups     []string `json:"named_groups"`
	Examples        []string `json:"examples"`
	TemplatePattern string   `json:"template_pattern"`
}

// Shape tokens in recognition order, most specific first. A token that looks
// like an airport pair must not degrade to a generic uppercase word.
var shapeTokens = []struct {
	name string
	re   *regexp.Regexp
}{
	{"<AIRPORTS>", regexp.MustCompile(`^[A-Z]{6}\*?$`)},
	{"<DAYMON>", regexp.MustCompile(`^\d{1,2}[A-Z]{3}$`)},
	{"<STATUS>", regexp.MustCompile(`^[A-Z]{2}\d$`)},
	{"<TIME>", regexp.MustCompile(`^#?\d{4}$`)},
	{"<AMOUNT>", regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?$|^\d+(?:[.,]\d{1,2})?$`)},
	{"<PCT>", regexp.MustCompile(`^\d{1,3}(?:[.,]\d{1,2})?%$`)},
	{"<PARCELAS>", regexp.MustCompile(`^\d{1,2}x$`)},
	{"<CODE>", regexp.MustCompile(`^[A-Z]{2,4}$`)},
	{"<NUM>", regexp.MustCompile(`^\d+$`)},
	{"<WORD>", regexp.MustCompile(`^[A-Za-zÀ-ÿ]+$`)},
}

// normaliseToTemplate reduces a line to its shape: every token becomes either
// a shape marker or itself (for punctuation and mixed tokens).
func normaliseToTemplate(line string) string {
	fields := strings.Fields(line)
	out := make([]string, 0, len(fields))

	for _, f := range fields {
		token := "<OTHER>"
		for _, st := range shapeTokens {
			if st.re.MatchString(f) {
				token = st.name
				break
			}
		}
		if token == "<OTHER>" && len(f) <= 2 {
			// Short punctuation-ish tokens (+, /, *) stay literal.
			token = f
		}
		out = append(out, token)
	}
	return strings.Join(out, " ")
}

// SuggestPatterns clusters lines by template and builds one regex candidate
// per cluster, largest clusters first.
func SuggestPatterns(notes []string, minClusterSize, maxSuggestions int) []PatternSuggestion {
	clusters := make(map[string][]string)
	for _, n := range notes {
		tmpl := normaliseToTemplate(n)
		clusters[tmpl] = append(clusters[tmpl], n)
	}

	type clusterInfo struct {
		template string
		lines    []string
	}
	var sorted []clusterInfo
	for tmpl, lines := range clusters {
		if len(lines) >= minClusterSize {
			sorted = append(sorted, clusterInfo{tmpl, lines})
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].lines) != len(sorted[j].lines) {
			return len(sorted[i].lines) > len(sorted[j].lines)
		}
		return sorted[i].template < sorted[j].template
	})
	if len(sorted) > maxSuggestions {
		sorted = sorted[:maxSuggestions]
	}

	var suggestions []PatternSuggestion
	for i, cluster := range sorted {
		s := PatternSuggestion{
			ClusterID:       i + 1,
			LineCount:       len(cluster.lines),
			TemplatePattern: cluster.template,
		}
		for j, line := range cluster.lines {
			if j >= 3 {
				break
			}
			s.Examples = append(s.Examples, line)
		}
		s.SuggestedRegex, s.NamedGroups = generateRegexFromTemplate(cluster.template)
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// generateRegexFromTemplate turns a shape template into a regex candidate
// with named capture groups for the code-bearing tokens.
func generateRegexFromTemplate(template string) (string, []string) {
	var parts []string
	var groups []string
	groupCounts := make(map[string]int)

	name := func(base string) string {
		groupCounts[base]++
		if groupCounts[base] > 1 {
			return fmt.Sprintf("%s%d", base, groupCounts[base])
		}
		return base
	}

	for _, tok := range strings.Fields(template) {
		switch tok {
		case "<AIRPORTS>":
			g := name("airports")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>[A-Z]{6})\*?`, g))
		case "<DAYMON>":
			g := name("date")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>\d{1,2}[A-Z]{3})`, g))
		case "<STATUS>":
			g := name("status")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>[A-Z]{2}\d)`, g))
		case "<TIME>":
			g := name("time")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`#?(?P<%s>\d{4})`, g))
		case "<AMOUNT>":
			g := name("amount")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`, g))
		case "<PCT>":
			g := name("pct")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>\d{1,3}(?:[.,]\d{1,2})?)%%`, g))
		case "<PARCELAS>":
			g := name("parcelas")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>\d{1,2})x`, g))
		case "<CODE>":
			g := name("code")
			groups = append(groups, g)
			parts = append(parts, fmt.Sprintf(`(?P<%s>[A-Z]{2,4})`, g))
		case "<NUM>":
			parts = append(parts, `\d+`)
		case "<WORD>":
			parts = append(parts, `\S+`)
		case "<OTHER>":
			parts = append(parts, `\S+`)
		default:
			parts = append(parts, regexp.QuoteMeta(tok))
		}
	}

	return `(?i)^\s*` + strings.Join(parts, `\s+`) + `\s*$`, groups
}

// PrintSuggestions outputs pattern suggestions in a readable format, testing
// each candidate back against the full note corpus.
func PrintSuggestions(suggestions []PatternSuggestion, notes []string) {
	for _, s := range suggestions {
		fmt.Printf("--------------------------------------------------------------\n")
		fmt.Printf("CLUSTER %d: %d lines\n", s.ClusterID, s.LineCount)
		fmt.Printf("--------------------------------------------------------------\n\n")

		fmt.Println("Template:")
		fmt.Printf("  %s\n\n", s.TemplatePattern)

		fmt.Println("Suggested Regex:")
		fmt.Printf("  %s\n\n", s.SuggestedRegex)

		if len(s.NamedGroups) > 0 {
			fmt.Printf("Capture Groups: %s\n\n", strings.Join(s.NamedGroups, ", "))
		}

		fmt.Println("Examples:")
		for _, ex := range s.Examples {
			fmt.Printf("  %s\n", ex)
		}

		if s.SuggestedRegex != "" {
			matches, total, _, _ := testAgainstNotes(s.SuggestedRegex, notes)
			fmt.Printf("\nTest Results: %d/%d unrecognised lines match (%.1f%%)\n", matches, total, pct(matches, total))
		}
		fmt.Println()
	}
}
