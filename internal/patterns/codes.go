package patterns

import "strings"

// CodeBlocklist contains tokens that look like airline/airport codes but are
// ordinary booking-text vocabulary. Checked before handing a token to the
// resolver so "USD" never reaches the unknown-code ledger.
var CodeBlocklist = map[string]bool{
	"OU": true, "USD": true, "BRL": true, "EUR": true, "TXS": true,
	"TAR": true, "NET": true, "ADT": true, "CHD": true, "INF": true,
	"RAV": true, "FEE": true, "PC": true, "KG": true, "VIA": true,
	"OPC": true, "IDA": true, "VOLTA": true,
}

// IsLikelyAirlineCode reports whether a token has the shape of an IATA (2 char)
// or ICAO (3 char) airline designator. Digits are allowed except as the first
// character (U2, 3K are not handled by this corpus; designators here start
// with a letter).
func IsLikelyAirlineCode(token string) bool {
	if len(token) < 2 || len(token) > 3 {
		return false
	}
	up := strings.ToUpper(token)
	if CodeBlocklist[up] {
		return false
	}
	for i, r := range up {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsLikelyAirportCode reports whether a token has the shape of an IATA (3
// letter) or ICAO (4 letter) airport code.
func IsLikelyAirportCode(token string) bool {
	if len(token) < 3 || len(token) > 4 {
		return false
	}
	up := strings.ToUpper(token)
	if CodeBlocklist[up] {
		return false
	}
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
