// Package patterns provides shared regex building blocks and helper functions
// for booking-text parsing. This file contains grok-style base patterns.
package patterns

// BasePatterns defines reusable regex components for grok-style pattern
// composition. Referenced in format patterns using {PATTERN_NAME} syntax.
// Patterns are written for case-insensitive compilation (see Compiler.Compile).
var BasePatterns = map[string]string{
	// Codes.
	"CARRIER":  `[A-Z0-9]{2}[A-Z]?`, // 2-3 char airline designator, e.g. AZ, LA, AZU
	"IATA":     `[A-Z]{3}`,          // 3-letter airport code
	"AIRPORTS": `[A-Z]{6}`,          // departure+arrival airport pair, e.g. GRUFCO

	// Flight identifiers.
	"FLIGHTNUM": `\d{1,4}`,
	"RBD":       `[A-Z]`, // single-letter booking class

	// Dates and times.
	"DAYMON": `\d{1,2}[A-Z]{3}`, // 25NOV
	"TIME4":  `\d{4}`,           // HHMM

	// Booking status + seat count, e.g. HS2, HK1.
	"STATUS": `[A-Z]{2}\d`,

	// Money amounts: 2529.00, 2.529,00, 66, 1,234.56.
	"AMOUNT": `\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`,

	// Percentages: 7, 7.5, 7,5.
	"PCT": `\d{1,3}(?:[.,]\d{1,2})?`,

	// Fare-class label after '*', kept verbatim. Stops at end of line.
	"LABEL": `[^\r\n]+`,

	// Baggage: pieces and per-piece weight.
	"PIECES": `\d{1,2}`,
	"KG":     `\d{1,3}`,

	// Installments: 4x, 10x.
	"PARCELAS": `\d{1,2}`,
}
