package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateFormats are tried in order by ParseDate.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
	"02.01.2006",
}

// ParseInt parses trimmed text as a base-10 integer.
func ParseInt(s string) (int64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloat parses trimmed text as a float. "nan" in any case is rejected;
// infinities are accepted.
func ParseFloat(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseDate parses trimmed text using the known date layouts.
func ParseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCell turns a raw text field into the most specific cell it can:
// missing for empty text, then integer, float, and finally string.
// Dates are left as text; they are only recognised once a column is known
// to hold dates.
func ParseCell(raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Missing()
	}
	if v, ok := ParseInt(raw); ok {
		return Int(v)
	}
	if v, ok := ParseFloat(raw); ok {
		return Float(v)
	}
	return Text(raw)
}

// AsFloat coerces a cell to a float. Values that cannot be read as numbers
// become missing.
func (c Cell) AsFloat() Cell {
	switch c.kind {
	case KindFloat, KindMissing:
		return c
	case KindInteger:
		return Float(float64(c.i))
	case KindString:
		if v, ok := ParseFloat(c.s); ok {
			return Float(v)
		}
	}
	return Missing()
}

// AsInteger coerces a cell to an integer, rounding fractional values to the
// nearest whole number. Values that cannot be read as finite numbers in the
// int64 range become missing.
func (c Cell) AsInteger() Cell {
	switch c.kind {
	case KindInteger, KindMissing:
		return c
	case KindString:
		if v, ok := ParseInt(c.s); ok {
			return Int(v)
		}
	}
	n, ok := c.AsFloat().Number()
	if !ok || math.IsInf(n, 0) {
		return Missing()
	}
	r := math.Round(n)
	if r < math.MinInt64 || r >= math.MaxInt64 {
		return Missing()
	}
	return Int(int64(r))
}

// AsDate coerces a cell to a date. Unparseable values become missing.
func (c Cell) AsDate() Cell {
	switch c.kind {
	case KindDate, KindMissing:
		return c
	case KindString:
		if t, ok := ParseDate(c.s); ok {
			return Date(t)
		}
	}
	return Missing()
}

// AsText converts a present cell to its string form. Missing stays missing.
func (c Cell) AsText() Cell {
	if c.kind == KindMissing || c.kind == KindString {
		return c
	}
	return Text(c.String())
}

// Coerce converts the cell to the representation of the given type.
func (c Cell) Coerce(t DataType) Cell {
	switch t {
	case TypeFloat:
		return c.AsFloat()
	case TypeInteger:
		return c.AsInteger()
	case TypeDate:
		return c.AsDate()
	default:
		return c.AsText()
	}
}
