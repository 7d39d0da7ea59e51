// Package segment provides grok-style pattern definitions for flight segment
// line parsing.
package segment

import "pnr_parser/internal/patterns"

// Formats defines the known segment line formats, most specific first.
var Formats = []patterns.Format{
	// Full form with a status token.
	// Example: AZ 679 25NOV GRUFCO HS2 2040 #1200
	// Example: LA 8065 J 12JAN GRUSCL* HK1 0125 0910 13JAN
	{
		Name: "segment_status",
		Pattern: `^\s*(?P<carrier>{CARRIER})\s+(?P<flight>{FLIGHTNUM})(?:\s+(?P<rbd>{RBD}))?` +
			`\s+(?P<depdate>{DAYMON})\s+(?P<airports>{AIRPORTS})\*?` +
			`\s+(?P<status>{STATUS})\s+(?P<deptime>{TIME4})\s+(?P<arrmark>#?)(?P<arrtime>{TIME4})` +
			`(?:\s+(?P<arrdate>{DAYMON}))?\s*$`,
		Fields: []string{"carrier", "flight", "rbd", "depdate", "airports", "status", "deptime", "arrmark", "arrtime", "arrdate"},
	},
	// Looser fallback without a status token; status defaults to HS1.
	// Example: AZ 679 25NOV GRUFCO 2040 #1200
	{
		Name: "segment_plain",
		Pattern: `^\s*(?P<carrier>{CARRIER})\s+(?P<flight>{FLIGHTNUM})(?:\s+(?P<rbd>{RBD}))?` +
			`\s+(?P<depdate>{DAYMON})\s+(?P<airports>{AIRPORTS})\*?` +
			`\s+(?P<deptime>{TIME4})\s+(?P<arrmark>#?)(?P<arrtime>{TIME4})` +
			`(?:\s+(?P<arrdate>{DAYMON}))?\s*$`,
		Fields: []string{"carrier", "flight", "rbd", "depdate", "airports", "deptime", "arrmark", "arrtime", "arrdate"},
	},
}
