// Package pnr provides the data model shared by the booking-text parser and
// the code resolution engine.
package pnr

import (
	"github.com/shopspring/decimal"
)

// PaxType classifies a fare by passenger type.
type PaxType string

const (
	PaxAdult  PaxType = "ADT"
	PaxChild  PaxType = "CHD"
	PaxInfant PaxType = "INF"
)

// Segment is one flight leg extracted from a booking block.
// Timestamps are timezone-naive ISO strings ("2006-01-02T15:04:05").
type Segment struct {
	Carrier      string `json:"carrier"`
	Flight       string `json:"flight"`
	DepAirport   string `json:"dep_airport"`
	ArrAirport   string `json:"arr_airport"`
	DepTimeISO   string `json:"dep_time_iso"`
	ArrTimeISO   string `json:"arr_time_iso"`
	Status       string `json:"status,omitempty"`        // booking status + seat count, e.g. "HS2"
	Cabin        string `json:"cabin,omitempty"`
	BookingClass string `json:"booking_class,omitempty"` // single-letter RBD when present
}

// Fare is one priced fare line. FareClass is kept verbatim; compound labels
// like "Exe/Internos em eco" are not decomposed.
type Fare struct {
	FareClass    string          `json:"fare_class"`
	PaxType      PaxType         `json:"pax_type"`
	BaseFare     decimal.Decimal `json:"base_fare"`
	BaseTaxes    decimal.Decimal `json:"base_taxes"`
	Notes        string          `json:"notes,omitempty"`
	IncludeInPDF bool            `json:"include_in_pdf"`
}

// Baggage is one checked-baggage allowance, optionally scoped to a fare class.
type Baggage struct {
	FareClass string `json:"fare_class,omitempty"`
	Pieces    int    `json:"pieces"`
	PieceKg   int    `json:"piece_kg"`
}

// Option is one self-contained itinerary+fare proposal within a booking email.
type Option struct {
	Label            string           `json:"label"` // display name, e.g. "Option 2"
	PaymentTerms     string           `json:"payment_terms,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	Segments         []Segment        `json:"segments"`
	Fares            []Fare           `json:"fares"`
	Baggage          []Baggage        `json:"baggage,omitempty"`
	NumParcelas      *int             `json:"num_parcelas,omitempty"`
	RavPercent       *float64         `json:"rav_percent,omitempty"`
	IncentivoPercent *float64         `json:"incentivo_percent,omitempty"`
	FeeUSD           *decimal.Decimal `json:"fee_usd,omitempty"`
	ChangePenalty    string           `json:"change_penalty,omitempty"`
}
