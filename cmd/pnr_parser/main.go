// Command-line entry point for the PNR booking-text parser.
//
// Note about input formats
// ------------------------
// Booking texts arrive as free text pasted from GDS terminals or consolidator
// emails. The CLI accepts either:
//  1. A whole text on stdin or via -input (the common case), or
//  2. JSONL via -jsonl: one {"text":"..."} object per line, each parsed
//     independently.
//
// Use -codes with -db to additionally resolve every extracted carrier and
// airport code against a local catalog database.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pnr_parser/internal/assemble"
	"pnr_parser/internal/extractor"
	"pnr_parser/internal/pnr"
	"pnr_parser/internal/resolver"
	"pnr_parser/internal/storage"
)

// ParseOut is one parsed booking text plus optional code resolutions.
type ParseOut struct {
	SourceHash string             `json:"source_hash"`
	Options    []pnr.Option       `json:"options"`
	Codes      []pnr.DecodeResult `json:"codes,omitempty"`
}

type Stats struct {
	Texts    int
	Options  int
	Segments int
	Fares    int
	Codes    int
	Resolved int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "pnr_parser - commands:")
	fmt.Fprintln(w, "  parse  - parse booking text and output JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pnr_parser parse [-input booking.txt] [-output out.json] [-pretty] [-jsonl] [-strip-metadata] [-codes -db catalog.db] [-stats]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Without -jsonl the whole input is treated as one booking text.")
	fmt.Fprintln(w, "  - With -jsonl each input line must be a JSON object with a \"text\" field.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "parse":
		runParse(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	jsonl := fs.Bool("jsonl", false, "Treat input as JSONL, one booking text per line")
	stripMeta := fs.Bool("strip-metadata", false, "Drop leading agency/header lines from single-block texts")
	resolveCodes := fs.Bool("codes", false, "Resolve extracted carrier/airport codes against -db")
	dbPath := fs.String("db", "", "SQLite catalog database (required with -codes)")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	var res *resolver.Resolver
	if *resolveCodes {
		if *dbPath == "" {
			fmt.Fprintln(os.Stderr, "-codes requires -db")
			os.Exit(2)
		}
		db, err := storage.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		res, err = resolver.New(context.Background(), db, db, resolver.Options{Unknown: db})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build resolver: %v\n", err)
			os.Exit(1)
		}
	}

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	cfg := assemble.Config{StripMetadata: *stripMeta}
	st := &Stats{}
	now := time.Now().UTC()

	var out []ParseOut
	if *jsonl {
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 1024*1024)
		scanner.Buffer(buf, 20*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var obj struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err != nil || strings.TrimSpace(obj.Text) == "" {
				continue
			}
			out = append(out, parseOne(obj.Text, now, cfg, res, st))
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
			os.Exit(1)
		}
	} else {
		raw, err := io.ReadAll(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
			os.Exit(1)
		}
		out = append(out, parseOne(string(raw), now, cfg, res, st))
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	// A single text outputs one object, JSONL input outputs an array.
	var v any = out
	if !*jsonl && len(out) == 1 {
		v = out[0]
	}
	enc, err := marshalJSON(v, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr,
			"stats: texts=%d options=%d segments=%d fares=%d codes=%d resolved=%d\n",
			st.Texts, st.Options, st.Segments, st.Fares, st.Codes, st.Resolved,
		)
	}
}

func parseOne(text string, now time.Time, cfg assemble.Config, res *resolver.Resolver, st *Stats) ParseOut {
	options := assemble.ParseWith(text, now, cfg)

	st.Texts++
	st.Options += len(options)
	for _, opt := range options {
		st.Segments += len(opt.Segments)
		st.Fares += len(opt.Fares)
	}

	po := ParseOut{
		SourceHash: pnr.SourceHash(text),
		Options:    options,
	}

	if res != nil {
		tokens := extractor.Tokens(options)
		po.Codes = res.ResolveBatch(context.Background(), tokens, po.SourceHash, 0)
		st.Codes += len(po.Codes)
		for _, c := range po.Codes {
			if c.Success {
				st.Resolved++
			}
		}
	}
	return po
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
