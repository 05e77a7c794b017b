package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

func tableLoader(t *testing.T) Loader {
	t.Helper()
	return func(_ context.Context, source string) (*model.Table, error) {
		if source == "missing.csv" {
			return nil, errors.New("no such file")
		}
		return twoColumnTable(t), nil
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, tableLoader(t))
		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, tableLoader(t), WithConcurrency(2))
		if bp.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, tableLoader(t), WithConcurrency(0))
		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, tableLoader(t), WithBatchLogger(nil))
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps results in input order", func(t *testing.T) {
		t.Parallel()

		var runs atomic.Int32
		factory := func() *Pipeline {
			p := New(WithLogger(quietLogger()))
			p.AddStep(&mockStep{name: "count", doFunc: func(context.Context, *model.Bundle) error {
				runs.Add(1)
				return nil
			}})
			return p
		}

		bp := NewBatchProcessor(factory, tableLoader(t), WithBatchLogger(quietLogger()))
		sources := []string{"a.csv", "missing.csv", "b.csv"}
		results, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, r := range results {
			if r.Source != sources[i] {
				t.Errorf("result %d: expected %q, got %q", i, sources[i], r.Source)
			}
		}
		if results[1].Err == nil || results[1].Bundle != nil {
			t.Error("expected load failure for missing.csv")
		}
		if results[0].Original == nil || results[0].Bundle == nil {
			t.Error("expected original and bundle for a.csv")
		}
		if runs.Load() != 2 {
			t.Errorf("expected 2 pipeline runs, got %d", runs.Load())
		}
	})

	t.Run("original is independent of the cleaned table", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New(WithLogger(quietLogger()))
			p.AddStep(&mockStep{name: "drop", doFunc: func(_ context.Context, b *model.Bundle) error {
				b.Table.DropRows(map[int]struct{}{0: {}})
				return nil
			}})
			return p
		}

		bp := NewBatchProcessor(factory, tableLoader(t), WithBatchLogger(quietLogger()))
		results, err := bp.ProcessBatch(context.Background(), []string{"a.csv"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Original.NumRows() != 2 {
			t.Errorf("expected original with 2 rows, got %d", results[0].Original.NumRows())
		}
		if results[0].Bundle.Table.NumRows() != 1 {
			t.Errorf("expected cleaned table with 1 row, got %d", results[0].Bundle.Table.NumRows())
		}
	})

	t.Run("callback sees every source", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		seen := make(map[int]string)
		bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(quietLogger())) },
			tableLoader(t), WithBatchLogger(quietLogger()), WithConcurrency(1))

		err := bp.ProcessBatchWithCallback(context.Background(), []string{"x", "y"}, func(r *Result, i int) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = r.Source
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[0] != "x" || seen[1] != "y" {
			t.Errorf("unexpected callbacks %v", seen)
		}
	})

	t.Run("cancelled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(quietLogger())) },
			tableLoader(t), WithBatchLogger(quietLogger()))

		if _, err := bp.ProcessBatch(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
