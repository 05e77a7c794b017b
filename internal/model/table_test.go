package model

import (
	"errors"
	"testing"
	"time"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		NewColumn("a", TypeInteger, []Cell{Int(1), Int(2), Int(3), Int(4)}),
		NewColumn("b", TypeString, []Cell{Text("w"), Text("x"), Missing(), Text("z")}),
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

// TestNewTableRagged tests that columns of different lengths are rejected.
func TestNewTableRagged(t *testing.T) {
	t.Parallel()

	_, err := NewTable(
		NewColumn("a", TypeInteger, []Cell{Int(1), Int(2)}),
		NewColumn("b", TypeInteger, []Cell{Int(1)}),
	)
	if !errors.Is(err, ErrRaggedTable) {
		t.Errorf("expected ErrRaggedTable, got %v", err)
	}
}

// TestTableDropRows tests that row removal keeps columns aligned.
func TestTableDropRows(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)
	removed := table.DropRows(map[int]struct{}{1: {}, 3: {}, 99: {}})
	if removed != 2 {
		t.Errorf("expected 2 rows removed, got %d", removed)
	}
	if table.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.NumRows())
	}
	for _, col := range table.Columns() {
		if len(col.Cells) != 2 {
			t.Errorf("column %s has %d cells, expected 2", col.Name, len(col.Cells))
		}
	}
	row := table.Row(1)
	if v, _ := row[0].Int64(); v != 3 {
		t.Errorf("expected first cell of row 1 to be 3, got %v", row[0])
	}
	if !row[1].IsMissing() {
		t.Errorf("expected second cell of row 1 to be missing, got %v", row[1])
	}
}

// TestTableKeepColumns tests column removal.
func TestTableKeepColumns(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)
	removed := table.KeepColumns(func(c *Column) bool { return c.Name != "a" })
	if removed != 1 {
		t.Errorf("expected 1 column removed, got %d", removed)
	}
	names := table.Names()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("expected [b], got %v", names)
	}
	if table.NumRows() != 4 {
		t.Errorf("expected row count to be unchanged, got %d", table.NumRows())
	}
}

// TestTableClone tests that a clone does not share cells.
func TestTableClone(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)
	clone := table.Clone()
	table.Column(0).Cells[0] = Int(100)
	table.Column(0).Name = "renamed"

	if v, _ := clone.Column(0).Cells[0].Int64(); v != 1 {
		t.Errorf("expected clone to keep 1, got %d", v)
	}
	if clone.Column(0).Name != "a" {
		t.Errorf("expected clone name a, got %s", clone.Column(0).Name)
	}
	if clone.Column(0).Origin != "a" {
		t.Errorf("expected clone origin a, got %s", clone.Column(0).Origin)
	}
}

// TestProcessTimes tests ordered recording and lookup.
func TestProcessTimes(t *testing.T) {
	t.Parallel()

	var pt ProcessTimes
	pt.Record(StepNormalizeHeaders, time.Second)
	pt.Record(ColumnStepLabel("age"), 2*time.Second)
	pt.Record(StepNormalizeHeaders, 3*time.Second)

	if len(pt) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(pt))
	}
	if d, ok := pt.Get(StepNormalizeHeaders); !ok || d != 3*time.Second {
		t.Errorf("expected 3s, got %v (ok=%v)", d, ok)
	}
	if pt.Total() != 5*time.Second {
		t.Errorf("expected total 5s, got %v", pt.Total())
	}
	if !IsColumnStep(pt[1].Label) || IsColumnStep(pt[0].Label) {
		t.Error("expected only the second entry to be a column step")
	}
}

// TestProgressFraction tests progress fractions.
func TestProgressFraction(t *testing.T) {
	t.Parallel()

	var ev ProgressEvent = StepProgress{Completed: 3, Total: 12, Label: StepRareValues}
	if ev.Fraction() != 0.25 {
		t.Errorf("expected 0.25, got %v", ev.Fraction())
	}
	ev = StepProgress{Completed: 5, Total: 0}
	if ev.Fraction() != 1 {
		t.Errorf("expected 1 for empty plan, got %v", ev.Fraction())
	}
	ev = Finished{Bundle: &Bundle{}}
	if ev.Fraction() != 1 {
		t.Errorf("expected 1, got %v", ev.Fraction())
	}
}

// TestBundleRecordSkipsEmpty tests that no-op operations are not recorded.
func TestBundleRecordSkipsEmpty(t *testing.T) {
	t.Parallel()

	b := &Bundle{}
	b.Record(CleaningOperation{Step: StepRemoveRows, Operation: OpDropRow, Cells: 0})
	b.Record(CleaningOperation{Step: StepRemoveRows, Operation: OpDropRow, Cells: 2})
	if len(b.Operations) != 1 {
		t.Errorf("expected 1 operation, got %d", len(b.Operations))
	}
}
