package model

import (
	"math"
	"strconv"
	"time"
)

// Kind identifies which value a Cell holds.
type Kind uint8

const (
	// KindMissing marks an absent value. It is the zero Kind so that the
	// zero Cell is missing.
	KindMissing Kind = iota

	// KindInteger holds an int64.
	KindInteger

	// KindFloat holds a finite or infinite float64. NaN is never stored;
	// it is normalised to KindMissing.
	KindFloat

	// KindString holds free text.
	KindString

	// KindDate holds a point in time.
	KindDate
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Cell is a single table value. Cells are small values and are copied freely.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Missing returns the missing-value sentinel.
func Missing() Cell {
	return Cell{}
}

// Int returns an integer cell.
func Int(v int64) Cell {
	return Cell{kind: KindInteger, i: v}
}

// Float returns a float cell. NaN becomes a missing cell.
func Float(v float64) Cell {
	if math.IsNaN(v) {
		return Missing()
	}
	return Cell{kind: KindFloat, f: v}
}

// Text returns a string cell.
func Text(s string) Cell {
	return Cell{kind: KindString, s: s}
}

// Date returns a date cell.
func Date(t time.Time) Cell {
	return Cell{kind: KindDate, t: t}
}

// Kind reports which value the cell holds.
func (c Cell) Kind() Kind {
	return c.kind
}

// IsMissing reports whether the cell is the missing sentinel.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Number returns the numeric value of integer and float cells.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindInteger:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	default:
		return 0, false
	}
}

// Int64 returns the value of an integer cell.
func (c Cell) Int64() (int64, bool) {
	return c.i, c.kind == KindInteger
}

// Time returns the value of a date cell.
func (c Cell) Time() (time.Time, bool) {
	return c.t, c.kind == KindDate
}

// IsInf reports whether the cell is an infinite float.
func (c Cell) IsInf() bool {
	return c.kind == KindFloat && math.IsInf(c.f, 0)
}

// String renders the cell as text. Missing cells render as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case KindInteger:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindString:
		return c.s
	case KindDate:
		if c.t.Hour() == 0 && c.t.Minute() == 0 && c.t.Second() == 0 && c.t.Nanosecond() == 0 {
			return c.t.Format(time.DateOnly)
		}
		return c.t.Format(time.DateTime)
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value for database drivers:
// nil, int64, float64, string or time.Time.
func (c Cell) Value() any {
	switch c.kind {
	case KindInteger:
		return c.i
	case KindFloat:
		return c.f
	case KindString:
		return c.s
	case KindDate:
		return c.t
	default:
		return nil
	}
}

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case KindInteger:
		return c.i == other.i
	case KindFloat:
		return c.f == other.f
	case KindString:
		return c.s == other.s
	case KindDate:
		return c.t.Equal(other.t)
	default:
		return true
	}
}
