// Package fare provides grok-style pattern definitions for fare line parsing.
package fare

import "pnr_parser/internal/patterns"

// Formats defines the accepted fare line spellings, most specific first.
// The label-less fallback must stay last.
var Formats = []patterns.Format{
	// tarifa usd 2.529,00 + txs usd 66,00 *Exe
	{
		Name: "fare_tarifa_label",
		Pattern: `^\s*tarifa\s+usd\s+(?P<base>{AMOUNT})\s*\+\s*txs\s+usd\s+(?P<taxes>{AMOUNT})` +
			`\s*\*\s*(?P<label>{LABEL})$`,
		Fields: []string{"base", "taxes", "label"},
	},
	// usd 2529.00 + txs usd 66.00 *Eco
	{
		Name: "fare_usd_label",
		Pattern: `^\s*usd\s+(?P<base>{AMOUNT})\s*\+\s*txs\s+usd\s+(?P<taxes>{AMOUNT})` +
			`\s*\*\s*(?P<label>{LABEL})$`,
		Fields: []string{"base", "taxes", "label"},
	},
	// Label-less fallback, either spelling; the label defaults to "Tarifa".
	{
		Name: "fare_no_label",
		Pattern: `^\s*(?:tarifa\s+)?usd\s+(?P<base>{AMOUNT})\s*\+\s*txs\s+usd\s+(?P<taxes>{AMOUNT})\s*$`,
		Fields: []string{"base", "taxes"},
	},
}
