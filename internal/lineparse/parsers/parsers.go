// Package parsers imports all line parser packages to trigger their init()
// registration. Import this package for side effects only.
package parsers

import (
	// Import all parser packages to register them with the registry.
	_ "pnr_parser/internal/lineparse/parsers/baggage"
	_ "pnr_parser/internal/lineparse/parsers/fare"
	_ "pnr_parser/internal/lineparse/parsers/payment"
	_ "pnr_parser/internal/lineparse/parsers/segment"
)
