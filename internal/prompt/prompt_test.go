package prompt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
	"github.com/reab5555/AI-Data-Cleaner/internal/oracle"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedOracle(answer string) oracle.Oracle {
	return oracle.Func(func(context.Context, string) (string, error) {
		return answer, nil
	})
}

// TestExtractJSON tests tolerance for fences and surrounding prose.
func TestExtractJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected string
		wantErr  bool
	}{
		{"plain array", "[1, 2]", "[1, 2]", false},
		{"fenced", "```json\n{\"a\": 1}\n```", "{\"a\": 1}", false},
		{"prose", "Sure! Here it is: [3] Hope this helps.", "[3]", false},
		{"object with nested array", "{\"x\": [1]}", "{\"x\": [1]}", false},
		{"no json", "I cannot help", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractJSON(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestParseClassification tests the required-key rule and index tolerance.
func TestParseClassification(t *testing.T) {
	t.Parallel()

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		got, err := parseClassification(`{"data_type": "Integer", "empty_indices": [1, "2"], "invalid_indices": [3.0, -1, "x"]}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.DataType != model.TypeInteger {
			t.Errorf("expected integer, got %s", got.DataType)
		}
		if !reflect.DeepEqual(got.EmptyIndices, []int{1, 2}) {
			t.Errorf("unexpected empty indices %v", got.EmptyIndices)
		}
		if !reflect.DeepEqual(got.InvalidIndices, []int{3}) {
			t.Errorf("unexpected invalid indices %v", got.InvalidIndices)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		if _, err := parseClassification(`{"data_type": "float", "empty_indices": []}`); err == nil {
			t.Error("expected error for missing invalid_indices")
		}
	})

	t.Run("unknown type reads as string", func(t *testing.T) {
		t.Parallel()
		got, err := parseClassification(`{"data_type": "blob", "empty_indices": [2], "invalid_indices": [0]}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.DataType != model.TypeString {
			t.Errorf("expected string, got %s", got.DataType)
		}
		if !reflect.DeepEqual(got.EmptyIndices, []int{2}) || !reflect.DeepEqual(got.InvalidIndices, []int{0}) {
			t.Errorf("expected indices to be kept, got %+v", got)
		}
	})

	t.Run("null lists", func(t *testing.T) {
		t.Parallel()
		got, err := parseClassification(`{"data_type": "date", "empty_indices": null, "invalid_indices": null}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.EmptyIndices) != 0 || len(got.InvalidIndices) != 0 {
			t.Errorf("expected empty lists, got %+v", got)
		}
	})
}

// TestSampleDeterministic tests that sampling is reproducible and bounded.
func TestSampleDeterministic(t *testing.T) {
	t.Parallel()

	values := make([]int, 200)
	for i := range values {
		values[i] = i * 10
	}

	a, posA := Sample(values, DefaultSampleSize, DefaultSeed)
	b, posB := Sample(values, DefaultSampleSize, DefaultSeed)
	if len(a) != DefaultSampleSize {
		t.Fatalf("expected %d values, got %d", DefaultSampleSize, len(a))
	}
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(posA, posB) {
		t.Error("expected identical samples for the same seed")
	}
	if !sort.IntsAreSorted(posA) {
		t.Error("expected positions in ascending order")
	}
	for i, p := range posA {
		if values[p] != a[i] {
			t.Errorf("position %d does not match value %d", p, a[i])
		}
	}

	small, pos := Sample([]string{"x", "y"}, DefaultSampleSize, DefaultSeed)
	if !reflect.DeepEqual(small, []string{"x", "y"}) || !reflect.DeepEqual(pos, []int{0, 1}) {
		t.Errorf("expected short input to be returned whole, got %v %v", small, pos)
	}
}

// TestBuilderFallbacks tests that failures never surface as errors.
func TestBuilderFallbacks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	values := []model.Cell{model.Text("a"), model.Text("b")}

	for name, o := range map[string]oracle.Oracle{
		"unavailable": oracle.Unavailable{},
		"garbage":     fixedOracle("no idea, sorry"),
		"failing": oracle.Func(func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		}),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			b := New(o, WithLogger(quietLogger()))

			if got := b.InvalidHeaders(ctx, []string{"a"}); len(got) != 0 {
				t.Errorf("expected no invalid headers, got %v", got)
			}
			if got := b.NormalizeHeaders(ctx, []string{"a"}); len(got) != 0 {
				t.Errorf("expected empty mapping, got %v", got)
			}
			got, ok := b.ClassifyColumn(ctx, "c", values)
			if ok {
				t.Error("expected fallback classification")
			}
			if !reflect.DeepEqual(got, model.FallbackClassification()) {
				t.Errorf("expected fallback, got %+v", got)
			}
			if got := b.DetectTypos(ctx, "c", values); len(got) != 0 {
				t.Errorf("expected no typos, got %v", got)
			}
			if got := b.TransformStrings(ctx, "c", []string{"a"}); len(got) != 0 {
				t.Errorf("expected no transform, got %v", got)
			}
			if got := b.LowCountValues(ctx, "c", map[string]int{"a": 1}); len(got) != 0 {
				t.Errorf("expected no low-count values, got %v", got)
			}
		})
	}
}

// TestBuilderClassifyMapsPositions tests that sample positions are mapped
// back to batch positions and stale ones are dropped.
func TestBuilderClassifyMapsPositions(t *testing.T) {
	t.Parallel()

	var seen string
	o := oracle.Func(func(_ context.Context, p string) (string, error) {
		seen = p
		return "```json\n{\"data_type\": \"float\", \"empty_indices\": [1], \"invalid_indices\": [2, 15]}\n```", nil
	})
	b := New(o, WithLogger(quietLogger()), WithSampleSize(3))

	values := []model.Cell{model.Float(1), model.Missing(), model.Text("x")}
	got, ok := b.ClassifyColumn(context.Background(), "price", values)
	if !ok {
		t.Fatal("expected a real classification")
	}
	if got.DataType != model.TypeFloat {
		t.Errorf("expected float, got %s", got.DataType)
	}
	if !reflect.DeepEqual(got.EmptyIndices, []int{1}) {
		t.Errorf("unexpected empty indices %v", got.EmptyIndices)
	}
	if !reflect.DeepEqual(got.InvalidIndices, []int{2}) {
		t.Errorf("unexpected invalid indices %v", got.InvalidIndices)
	}
	if !strings.Contains(seen, `"price"`) || !strings.Contains(seen, `["1",null,"x"]`) {
		t.Errorf("prompt does not show column and values:\n%s", seen)
	}
}

// TestBuilderParsesAnswers tests the happy path of the remaining use cases.
func TestBuilderParsesAnswers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("invalid headers", func(t *testing.T) {
		t.Parallel()
		b := New(fixedOracle("[0, 5]"), WithLogger(quietLogger()))
		got := b.InvalidHeaders(ctx, []string{"", "name"})
		if !reflect.DeepEqual(got, []int{0}) {
			t.Errorf("expected [0], got %v", got)
		}
	})

	t.Run("typos", func(t *testing.T) {
		t.Parallel()
		b := New(fixedOracle(`{"typos": {"Londn": "London", "x": 3}}`), WithLogger(quietLogger()))
		got := b.DetectTypos(ctx, "city", []model.Cell{model.Text("Londn")})
		if !reflect.DeepEqual(got, map[string]string{"Londn": "London"}) {
			t.Errorf("unexpected typos %v", got)
		}
	})

	t.Run("typos without key", func(t *testing.T) {
		t.Parallel()
		b := New(fixedOracle(`{"Londn": "London"}`), WithLogger(quietLogger()))
		if got := b.DetectTypos(ctx, "city", nil); len(got) != 0 {
			t.Errorf("expected fallback, got %v", got)
		}
	})

	t.Run("low count", func(t *testing.T) {
		t.Parallel()
		b := New(fixedOracle(`["b", 7, true]`), WithLogger(quietLogger()))
		got := b.LowCountValues(ctx, "c", map[string]int{"a": 2, "b": 1, "7": 1})
		if !reflect.DeepEqual(got, []string{"b", "7"}) {
			t.Errorf("unexpected values %v", got)
		}
	})
}

// TestSortCounts tests the ordering of value counts in prompts.
func TestSortCounts(t *testing.T) {
	t.Parallel()

	got := sortCounts(map[string]int{"b": 1, "a": 1, "c": 3})
	expected := []ValueCount{{"c", 3}, {"a", 1}, {"b", 1}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, expected %v", got, expected)
	}
}
