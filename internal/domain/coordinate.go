package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoordinateKind records how a raw coordinate was supplied.
type CoordinateKind uint8

const (
	// KindNull covers JSON null, an absent field and a NULL column.
	KindNull CoordinateKind = iota
	KindNumber
	KindString
)

func (k CoordinateKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// RawCoordinate is a latitude or longitude exactly as received. The zero
// value is null.
type RawCoordinate struct {
	Kind   CoordinateKind
	Number float64
	Text   string
}

// NumberCoordinate wraps a native numeric value.
func NumberCoordinate(v float64) RawCoordinate {
	return RawCoordinate{Kind: KindNumber, Number: v}
}

// TextCoordinate wraps a string value, e.g. "48,85".
func TextCoordinate(s string) RawCoordinate {
	return RawCoordinate{Kind: KindString, Text: s}
}

// IsNull reports whether no value was supplied.
func (r RawCoordinate) IsNull() bool { return r.Kind == KindNull }

// String renders the raw input for diagnostics.
func (r RawCoordinate) String() string {
	switch r.Kind {
	case KindNumber:
		return strconv.FormatFloat(r.Number, 'g', -1, 64)
	case KindString:
		return strconv.Quote(r.Text)
	default:
		return "null"
	}
}

// UnmarshalJSON never fails: anything that is neither null, a string nor a
// parseable number is kept as text so normalization can fall back later.
func (r *RawCoordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = RawCoordinate{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*r = TextCoordinate(string(b))
			return nil
		}
		*r = TextCoordinate(s)
	default:
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			*r = TextCoordinate(string(b))
			return nil
		}
		*r = NumberCoordinate(v)
	}
	return nil
}

// MarshalJSON writes the value back in its original shape. Non-finite numbers
// cannot be represented in JSON and are written as null.
func (r RawCoordinate) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindNumber:
		if math.IsNaN(r.Number) || math.IsInf(r.Number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(r.Number)
	case KindString:
		return json.Marshal(r.Text)
	default:
		return []byte("null"), nil
	}
}

// ParseOutcome describes how Normalize arrived at its value.
type ParseOutcome uint8

const (
	Parsed ParseOutcome = iota
	Missing
	Unparsable
	NonFinite
)

func (o ParseOutcome) String() string {
	switch o {
	case Missing:
		return "missing"
	case Unparsable:
		return "unparsable"
	case NonFinite:
		return "non_finite"
	default:
		return "parsed"
	}
}

// ParseCoordinate normalizes a raw coordinate to a finite float64. Strings
// are trimmed and their first comma is read as the decimal separator.
// Anything that does not yield a finite number becomes 0.
func ParseCoordinate(raw RawCoordinate) (float64, ParseOutcome) {
	var v float64
	switch raw.Kind {
	case KindNull:
		return 0, Missing
	case KindNumber:
		v = raw.Number
	case KindString:
		s := strings.Replace(strings.TrimSpace(raw.Text), ",", ".", 1)
		// Go float syntax: hex floats ("0x1p4") parse, "inf" and "nan" are non-finite.
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// ParseFloat reports ±Inf with a range error for overflowing input.
			if math.IsInf(parsed, 0) {
				return 0, NonFinite
			}
			return 0, Unparsable
		}
		v = parsed
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NonFinite
	}
	return v, Parsed
}

// Normalize is ParseCoordinate without the outcome.
func Normalize(raw RawCoordinate) float64 {
	v, _ := ParseCoordinate(raw)
	return v
}

// IsValidLatitude reports whether v is a finite latitude in [-90, 90].
func IsValidLatitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

// IsValidLongitude reports whether v is a finite longitude in [-180, 180].
func IsValidLongitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}

// Coordinate is a normalized WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are in range.
func (c Coordinate) Valid() bool {
	return IsValidLatitude(c.Lat) && IsValidLongitude(c.Lng)
}
