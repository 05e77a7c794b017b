package model

import (
	"fmt"
	"strings"
)

// DataType is the semantic type of a column, as judged by the oracle or by
// mechanical inference.
type DataType string

const (
	// TypeFloat is a real-valued numeric column.
	TypeFloat DataType = "float"

	// TypeInteger is a whole-number column that may contain missing values.
	TypeInteger DataType = "integer"

	// TypeString is free text. It is also the fallback when nothing better
	// is known.
	TypeString DataType = "string"

	// TypeDate is a date or timestamp column.
	TypeDate DataType = "date"
)

// ParseDataType converts an oracle label to a DataType. Labels are matched
// case-insensitively, and a few common synonyms are accepted.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "double", "numeric", "number", "decimal":
		return TypeFloat, nil
	case "integer", "int", "int64":
		return TypeInteger, nil
	case "string", "str", "text", "object", "category", "categorical":
		return TypeString, nil
	case "date", "datetime", "timestamp", "time":
		return TypeDate, nil
	default:
		return "", fmt.Errorf("unknown data type %q", s)
	}
}

// IsNumeric reports whether values of this type are numbers.
func (d DataType) IsNumeric() bool {
	return d == TypeFloat || d == TypeInteger
}

// InferType guesses a column type from its cells without consulting the
// oracle. Integer wins if every present value is integral, then float, then
// date. Anything else, including a column with no present values, is string.
func InferType(cells []Cell) DataType {
	present := 0
	integers, floats, dates := 0, 0, 0
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		present++
		switch c.Kind() {
		case KindInteger:
			integers++
		case KindFloat:
			floats++
		case KindDate:
			dates++
		case KindString:
			if _, ok := ParseInt(c.String()); ok {
				integers++
			} else if _, ok := ParseFloat(c.String()); ok {
				floats++
			} else if _, ok := ParseDate(c.String()); ok {
				dates++
			}
		}
	}

	switch {
	case present == 0:
		return TypeString
	case integers == present:
		return TypeInteger
	case integers+floats == present:
		return TypeFloat
	case dates == present:
		return TypeDate
	default:
		return TypeString
	}
}
