// Package main provides a corpus analyzer for booking texts.
// It reports line-level parsing coverage and clusters unrecognised lines
// into shape templates so new line recognizers can be targeted at the most
// common gaps.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"pnr_parser/internal/lineparse"
	_ "pnr_parser/internal/lineparse/parsers" // register all line parsers
	"pnr_parser/internal/split"
)

// lineRecord is one classified line of the corpus.
type lineRecord struct {
	Text string `json:"text"`
	Kind string `json:"kind"` // recognizer kind, or "note" when unclaimed
}

// coverage aggregates classification counts over the whole corpus.
type coverage struct {
	Texts   int            `json:"texts"`
	Lines   int            `json:"lines"`
	ByKind  map[string]int `json:"by_kind"`
	Notes   int            `json:"notes"`
	Covered float64        `json:"covered_pct"`
}

func main() {
	inPath := flag.String("input", "", "Input JSONL file of {\"text\":...} objects (default: stdin)")
	outputFormat := flag.String("format", "text", "Output format: text, json")
	topN := flag.Int("top", 20, "Show top N unrecognised clusters")
	suggest := flag.Bool("suggest", false, "Generate regex suggestions for unrecognised clusters")
	minCluster := flag.Int("min-cluster", 3, "Minimum cluster size for suggestions")
	testPattern := flag.String("test", "", "Test a regex pattern against the unrecognised lines")

	flag.Parse()

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	records, cov := classifyCorpus(r)

	var notes []string
	for _, rec := range records {
		if rec.Kind == "note" {
			notes = append(notes, rec.Text)
		}
	}

	// Pattern testing mode.
	if *testPattern != "" {
		matches, total, samples, misses := testAgainstNotes(*testPattern, notes)
		fmt.Printf("Pattern: %s\n", *testPattern)
		fmt.Printf("Result: %d/%d unrecognised lines match (%.1f%%)\n\n", matches, total, pct(matches, total))
		if len(samples) > 0 {
			fmt.Println("Sample matches:")
			for _, s := range samples {
				fmt.Printf("  %s\n", s)
			}
		}
		if len(misses) > 0 {
			fmt.Println("Sample non-matches:")
			for _, s := range misses {
				fmt.Printf("  %s\n", s)
			}
		}
		return
	}

	// Suggestion mode.
	if *suggest {
		suggestions := SuggestPatterns(notes, *minCluster, *topN)
		if *outputFormat == "json" {
			enc, _ := json.MarshalIndent(suggestions, "", "  ")
			fmt.Println(string(enc))
			return
		}
		PrintSuggestions(suggestions, notes)
		return
	}

	// Coverage report.
	if *outputFormat == "json" {
		out := struct {
			Coverage coverage         `json:"coverage"`
			Clusters []clusterSummary `json:"top_unrecognised"`
		}{cov, topClusters(notes, *topN)}
		enc, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(enc))
		return
	}

	printCoverage(cov)
	fmt.Println()
	fmt.Printf("Top unrecognised line shapes (of %d note lines):\n", cov.Notes)
	for _, c := range topClusters(notes, *topN) {
		fmt.Printf("  %4d  %s\n", c.Count, c.Template)
		fmt.Printf("        e.g. %s\n", c.Example)
	}
}

// classifyCorpus reads the JSONL corpus and dispatches every option-block
// line through the recognizer registry.
func classifyCorpus(r io.Reader) ([]lineRecord, coverage) {
	reg := lineparse.Default()
	reg.Sort()
	now := time.Now().UTC()

	cov := coverage{ByKind: make(map[string]int)}
	var records []lineRecord

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 20*1024*1024)

	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil || strings.TrimSpace(obj.Text) == "" {
			continue
		}
		cov.Texts++

		for _, block := range split.Split(obj.Text) {
			for _, l := range strings.Split(block, "\n") {
				line := strings.TrimSpace(l)
				if line == "" || split.IsSeparator(line) {
					continue
				}
				cov.Lines++

				kind := "note"
				if result := reg.Dispatch(&lineparse.Line{Text: line, Now: now}); result != nil {
					kind = result.Kind()
				} else {
					cov.Notes++
				}
				cov.ByKind[kind]++
				records = append(records, lineRecord{Text: line, Kind: kind})
			}
		}
	}

	if cov.Lines > 0 {
		cov.Covered = pct(cov.Lines-cov.Notes, cov.Lines)
	}
	return records, cov
}

type clusterSummary struct {
	Template string `json:"template"`
	Count    int    `json:"count"`
	Example  string `json:"example"`
}

// topClusters groups note lines by shape template, largest first.
func topClusters(notes []string, topN int) []clusterSummary {
	byTemplate := make(map[string][]string)
	for _, n := range notes {
		tmpl := normaliseToTemplate(n)
		byTemplate[tmpl] = append(byTemplate[tmpl], n)
	}

	var out []clusterSummary
	for tmpl, lines := range byTemplate {
		out = append(out, clusterSummary{Template: tmpl, Count: len(lines), Example: lines[0]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Template < out[j].Template
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func testAgainstNotes(pattern string, notes []string) (matches, total int, sampleMatches, sampleNonMatches []string) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad pattern: %v\n", err)
		os.Exit(1)
	}

	for _, n := range notes {
		total++
		if re.MatchString(n) {
			matches++
			if len(sampleMatches) < 5 {
				sampleMatches = append(sampleMatches, n)
			}
		} else if len(sampleNonMatches) < 5 {
			sampleNonMatches = append(sampleNonMatches, n)
		}
	}
	return matches, total, sampleMatches, sampleNonMatches
}

func printCoverage(cov coverage) {
	fmt.Printf("Corpus: %d texts, %d lines\n", cov.Texts, cov.Lines)
	fmt.Printf("Coverage: %.1f%% of lines claimed by a recognizer\n\n", cov.Covered)

	kinds := make([]string, 0, len(cov.ByKind))
	for k := range cov.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return cov.ByKind[kinds[i]] > cov.ByKind[kinds[j]] })

	for _, k := range kinds {
		n := cov.ByKind[k]
		fmt.Printf("  %-10s %6d  (%.1f%%)\n", k, n, pct(n, cov.Lines))
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
