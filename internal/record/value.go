package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single typed cell. The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number wraps a finite decimal.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a raw string, including the empty string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Missing marks a field that has no cell at all.
func Missing() Value { return Value{} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the stored number. It does not coerce text.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Numeric coerces the value to a number the way the correlation engine reads
// samples: numbers pass through, text is parsed, anything else fails.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return ParseDecimal(v.text)
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// MarshalJSON renders numbers as JSON numbers, text as strings and missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// Infer applies the ingest typing rule to an already trimmed cell.
func Infer(cell string) Value {
	if f, ok := ParseDecimal(cell); ok {
		return Number(f)
	}
	return Text(cell)
}

// ParseDecimal reports whether s is a finite decimal number.
// Hex floats, underscores and inf/nan spellings are rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	if strings.ContainsAny(lower, "x_") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
