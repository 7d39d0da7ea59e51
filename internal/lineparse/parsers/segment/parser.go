package segment

import (
	"strings"
	"sync"
	"time"

	"pnr_parser/internal/lineparse"
	"pnr_parser/internal/patterns"
	"pnr_parser/internal/pnr"
)

// isoLayout is the timezone-naive timestamp layout used across parsed data.
const isoLayout = "2006-01-02T15:04:05"

// defaultStatus is assumed when a segment line carries no status token.
const defaultStatus = "HS1"

// Result wraps one parsed flight segment.
type Result struct {
	pnr.Segment
}

func (r *Result) Kind() string { return "segment" }

// Parser recognizes flight segment lines.
type Parser struct{}

// Grok compiler singleton.
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

func (p *Parser) Name() string  { return "segment" }
func (p *Parser) Priority() int { return 10 }

func (p *Parser) QuickCheck(text string) bool {
	// Segment lines always carry at least carrier, flight, date, airport pair
	// and two times. Anything shorter cannot match.
	return len(strings.TrimSpace(text)) >= 18 && strings.Contains(text, " ")
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

	airports := strings.ToUpper(match.Captures["airports"])

	seg := pnr.Segment{
		Carrier:      strings.ToUpper(match.Captures["carrier"]),
		Flight:       match.Captures["flight"],
		DepAirport:   airports[:3],
		ArrAirport:   airports[3:],
		Status:       strings.ToUpper(match.GetCapture("status", defaultStatus)),
		BookingClass: strings.ToUpper(match.Captures["rbd"]),
	}
	seg.Cabin = cabinForClass(seg.BookingClass)

	depDate := resolveDate(match.Captures["depdate"], line.Now)
	depTime := parseHHMM(match.Captures["deptime"])
	dep := depDate.Add(depTime)
	seg.DepTimeISO = dep.Format(isoLayout)

	arrTime := parseHHMM(match.Captures["arrtime"])
	var arrDate time.Time
	switch {
	case match.Captures["arrdate"] != "":
		// Explicit arrival date wins verbatim; no overnight inference.
		arrDate = resolveDate(match.Captures["arrdate"], line.Now)
	case match.Captures["arrmark"] == "#":
		// Overnight marker with no explicit date: arrival is next calendar day.
		arrDate = depDate.AddDate(0, 0, 1)
	default:
		arrDate = depDate
	}
	seg.ArrTimeISO = arrDate.Add(arrTime).Format(isoLayout)

	return &Result{Segment: seg}
}

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
	// Portuguese month abbreviations seen in consolidator dumps.
	"FEV": time.February, "ABR": time.April, "MAI": time.May,
	"AGO": time.August, "SET": time.September, "OUT": time.October,
	"DEZ": time.December,
}

// resolveDate resolves a DDMON token to a full date, assuming the current
// year unless that date has already passed relative to now, in which case it
// rolls to next year. Malformed tokens fall back to today.
func resolveDate(token string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	token = strings.ToUpper(strings.TrimSpace(token))
	if len(token) < 4 {
		return today
	}

	monTok := token[len(token)-3:]
	dayTok := token[:len(token)-3]

	month, ok := months[monTok]
	if !ok {
		return today
	}
	day := 0
	for _, r := range dayTok {
		if r < '0' || r > '9' {
			return today
		}
		day = day*10 + int(r-'0')
	}
	if day < 1 || day > 31 {
		return today
	}

	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// parseHHMM converts an HHMM token to a duration past midnight.
// Malformed tokens fall back to start of day.
func parseHHMM(token string) time.Duration {
	if len(token) != 4 {
		return 0
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0
		}
	}
	hh := int(token[0]-'0')*10 + int(token[1]-'0')
	mm := int(token[2]-'0')*10 + int(token[3]-'0')
	if hh > 23 || mm > 59 {
		return 0
	}
	return time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
}

// cabinForClass maps a booking class letter to a display cabin. Unknown or
// absent classes yield no cabin rather than a wrong one.
func cabinForClass(rbd string) string {
	switch rbd {
	case "F", "A":
		return "Primeira"
	case "J", "C", "D", "I", "Z":
		return "Executiva"
	case "W", "P":
		return "Premium"
	case "":
		return ""
	default:
		return "Econômica"
	}
}
