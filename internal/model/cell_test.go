package model

import (
	"math"
	"testing"
	"time"
)

// TestFloatNaNIsMissing tests that NaN never becomes a float cell.
func TestFloatNaNIsMissing(t *testing.T) {
	t.Parallel()

	if !Float(math.NaN()).IsMissing() {
		t.Error("expected NaN to produce a missing cell")
	}
	if Float(math.Inf(1)).IsMissing() {
		t.Error("expected +Inf to be kept")
	}
	if !Float(math.Inf(-1)).IsInf() {
		t.Error("expected -Inf to report IsInf")
	}
}

// TestCellString tests text rendering of each kind.
func TestCellString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		cell     Cell
		expected string
	}{
		{"missing", Missing(), ""},
		{"integer", Int(-42), "-42"},
		{"float", Float(2.5), "2.5"},
		{"text", Text("hello"), "hello"},
		{"date only", Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "2024-03-01"},
		{"date time", Date(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)), "2024-03-01 10:30:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.cell.String(); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestParseCell tests best-effort parsing of raw fields.
func TestParseCell(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw      string
		expected Kind
	}{
		{"", KindMissing},
		{"   ", KindMissing},
		{"12", KindInteger},
		{" 12 ", KindInteger},
		{"1.5", KindFloat},
		{"1e3", KindFloat},
		{"inf", KindFloat},
		{"nan", KindString},
		{"abc", KindString},
		{"2024-01-02", KindString},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			if got := ParseCell(tc.raw).Kind(); got != tc.expected {
				t.Errorf("ParseCell(%q) kind = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

// TestCoerce tests conversion of cells to each data type.
func TestCoerce(t *testing.T) {
	t.Parallel()

	t.Run("float from text", func(t *testing.T) {
		t.Parallel()
		c := Text(" 3.25 ").Coerce(TypeFloat)
		v, ok := c.Number()
		if !ok || v != 3.25 {
			t.Errorf("expected 3.25, got %v (ok=%v)", v, ok)
		}
	})

	t.Run("float from garbage is missing", func(t *testing.T) {
		t.Parallel()
		if !Text("abc").Coerce(TypeFloat).IsMissing() {
			t.Error("expected missing")
		}
	})

	t.Run("integer rounds floats", func(t *testing.T) {
		t.Parallel()
		v, ok := Float(2.6).Coerce(TypeInteger).Int64()
		if !ok || v != 3 {
			t.Errorf("expected 3, got %d (ok=%v)", v, ok)
		}
		v, ok = Text("7.4").Coerce(TypeInteger).Int64()
		if !ok || v != 7 {
			t.Errorf("expected 7, got %d (ok=%v)", v, ok)
		}
	})

	t.Run("integer from infinity is missing", func(t *testing.T) {
		t.Parallel()
		if !Float(math.Inf(1)).Coerce(TypeInteger).IsMissing() {
			t.Error("expected missing")
		}
	})

	t.Run("date layouts", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"2024-01-02", "01/02/2024", "2024/01/02", "02.01.2024", "2024-01-02T00:00:00Z"} {
			c := Text(raw).Coerce(TypeDate)
			got, ok := c.Time()
			if !ok {
				t.Errorf("expected %q to parse as a date", raw)
				continue
			}
			if got.Year() != 2024 || got.Month() != time.January || got.Day() != 2 {
				t.Errorf("%q parsed as %v", raw, got)
			}
		}
	})

	t.Run("string renders numbers", func(t *testing.T) {
		t.Parallel()
		c := Int(5).Coerce(TypeString)
		if c.Kind() != KindString || c.String() != "5" {
			t.Errorf("expected string \"5\", got %v %q", c.Kind(), c.String())
		}
	})

	t.Run("missing stays missing", func(t *testing.T) {
		t.Parallel()
		for _, typ := range []DataType{TypeFloat, TypeInteger, TypeDate, TypeString} {
			if !Missing().Coerce(typ).IsMissing() {
				t.Errorf("expected missing for %s", typ)
			}
		}
	})
}

// TestInferType tests mechanical type inference.
func TestInferType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		cells    []Cell
		expected DataType
	}{
		{"empty", nil, TypeString},
		{"all missing", []Cell{Missing(), Missing()}, TypeString},
		{"integers", []Cell{Int(1), Missing(), Int(3)}, TypeInteger},
		{"mixed numbers", []Cell{Int(1), Float(2.5)}, TypeFloat},
		{"numeric text", []Cell{Text("1"), Text("2.5")}, TypeFloat},
		{"dates", []Cell{Text("2024-01-01"), Text("2024-02-01")}, TypeDate},
		{"mixed text", []Cell{Int(1), Text("abc")}, TypeString},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := InferType(tc.cells); got != tc.expected {
				t.Errorf("got %s, expected %s", got, tc.expected)
			}
		})
	}
}

// TestParseDataType tests oracle label parsing.
func TestParseDataType(t *testing.T) {
	t.Parallel()

	for label, expected := range map[string]DataType{
		"float":   TypeFloat,
		"Integer": TypeInteger,
		" date ":  TypeDate,
		"object":  TypeString,
	} {
		got, err := ParseDataType(label)
		if err != nil {
			t.Errorf("ParseDataType(%q) returned error: %v", label, err)
			continue
		}
		if got != expected {
			t.Errorf("ParseDataType(%q) = %s, expected %s", label, got, expected)
		}
	}

	if _, err := ParseDataType("blob"); err == nil {
		t.Error("expected error for unknown label")
	}
}
