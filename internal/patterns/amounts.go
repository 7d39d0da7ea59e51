package patterns

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalises a money token that may use either ',' or '.' as the
// decimal separator (with the other as an optional thousands separator) into
// a canonical decimal. "2.529,00" and "2529.00" parse to the same value.
func ParseAmount(token string) (decimal.Decimal, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return decimal.Zero, fmt.Errorf("parse amount: empty token")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Comma only. A single comma followed by 1-2 digits is a decimal
		// separator; anything else ("1,234") is a thousands separator.
		if strings.Count(s, ",") == 1 && len(s)-lastComma <= 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// Dot only: decimal separator unless it reads as thousands grouping.
		if strings.Count(s, ".") > 1 || len(s)-lastDot == 4 && len(s) > 4 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", token, err)
	}
	return d, nil
}
