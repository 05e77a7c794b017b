package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, bundle *model.Bundle) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, bundle *model.Bundle) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, bundle)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// mockExpander unfolds into one mockStep per column.
type mockExpander struct {
	mockStep
}

func (m *mockExpander) Planned(table *model.Table) int {
	return table.NumColumns()
}

func (m *mockExpander) Expand(bundle *model.Bundle) []Step {
	steps := make([]Step, 0, bundle.Table.NumColumns())
	for _, name := range bundle.Table.Names() {
		steps = append(steps, &mockStep{name: "sub " + name})
	}
	return steps
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoColumnTable(t *testing.T) *model.Table {
	t.Helper()
	table, err := model.NewTable(
		model.NewColumn("a", model.TypeInteger, []model.Cell{model.Int(1), model.Int(2)}),
		model.NewColumn("b", model.TypeString, []model.Cell{model.Text("x"), model.Missing()}),
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func collectEvents(p *Pipeline, ctx context.Context, table *model.Table) []model.ProgressEvent {
	var events []model.ProgressEvent
	for ev := range p.Run(ctx, table) {
		events = append(events, ev)
	}
	return events
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineStepNames tests step bookkeeping.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	expected := []string{"first", "second", "third"}
	names := p.StepNames()
	if len(names) != len(expected) {
		t.Fatalf("expected %d names, got %d", len(expected), len(names))
	}
	for i, name := range names {
		if name != expected[i] {
			t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
		}
	}
}

// TestPipelineRun tests progress events and ordering.
func TestPipelineRun(t *testing.T) {
	t.Parallel()

	t.Run("emits one event per step and a final bundle", func(t *testing.T) {
		t.Parallel()

		order := make([]string, 0)
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.Bundle) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(record("one"), &mockExpander{mockStep{name: "columns"}}, record("two"))

		events := collectEvents(p, context.Background(), twoColumnTable(t))
		if len(events) != 5 {
			t.Fatalf("expected 5 events, got %d", len(events))
		}

		labels := []string{"one", "sub a", "sub b", "two"}
		prev := 0.0
		for i, label := range labels {
			sp, ok := events[i].(model.StepProgress)
			if !ok {
				t.Fatalf("event %d: expected StepProgress, got %T", i, events[i])
			}
			if sp.Label != label {
				t.Errorf("event %d: expected label %q, got %q", i, label, sp.Label)
			}
			if sp.Total != 4 {
				t.Errorf("event %d: expected total 4, got %d", i, sp.Total)
			}
			if sp.Fraction() < prev {
				t.Errorf("event %d: fraction went backwards", i)
			}
			prev = sp.Fraction()
		}

		done, ok := events[4].(model.Finished)
		if !ok {
			t.Fatalf("expected Finished, got %T", events[4])
		}
		if done.Fraction() != 1 {
			t.Errorf("expected final fraction 1, got %v", done.Fraction())
		}
		if _, ok := done.Bundle.ProcessTimes.Get("sub b"); !ok {
			t.Error("expected sub-step timing to be recorded")
		}
		if done.Bundle.NonconformingBefore["b"] != 1 {
			t.Errorf("expected nonconformance snapshot, got %v", done.Bundle.NonconformingBefore)
		}
		if len(order) != 2 || order[0] != "one" || order[1] != "two" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("is lazy", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "only"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		seq := p.Run(context.Background(), twoColumnTable(t))
		if step.callCount != 0 {
			t.Error("expected no work before iteration")
		}
		for range seq {
			break
		}
		if step.callCount != 1 {
			t.Errorf("expected 1 call, got %d", step.callCount)
		}
	})

	t.Run("stops on error by default", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		after := &mockStep{name: "after"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "fails", doFunc: func(context.Context, *model.Bundle) error { return boom }}, after)

		bundle, err := p.Execute(context.Background(), twoColumnTable(t))
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped")
		}
		if bundle.ErrorMessage != "boom" {
			t.Errorf("expected error message in bundle, got %q", bundle.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		after := &mockStep{name: "after"}
		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(&mockStep{name: "fails", doFunc: func(context.Context, *model.Bundle) error {
			return errors.New("boom")
		}}, after)

		if _, err := p.Execute(context.Background(), twoColumnTable(t)); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected later step to run")
		}
	})

	t.Run("cancellation yields partial bundle", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		second := &mockStep{name: "second"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *model.Bundle) error {
			cancel()
			return nil
		}}, second)

		events := collectEvents(p, ctx, twoColumnTable(t))
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		done, ok := events[1].(model.Finished)
		if !ok {
			t.Fatalf("expected Finished, got %T", events[1])
		}
		if !done.Bundle.Cancelled {
			t.Error("expected Cancelled to be set")
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		if done.Bundle.Table.NumRows() != 2 {
			t.Error("expected partial table to be returned")
		}
	})
}
