package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testSummary(source string, at time.Time) *model.Summary {
	return &model.Summary{
		Source:         source,
		GeneratedAt:    at,
		RowsBefore:     10,
		ColumnsBefore:  2,
		RowsAfter:      9,
		ColumnsAfter:   1,
		RemovedRows:    1,
		RemovedColumns: 1,
		Columns: []model.ColumnReport{
			{Origin: "Age", Name: "age", TypeBefore: model.TypeString, TypeAfter: model.TypeInteger, ValidBefore: 90, ValidAfter: 100},
			{Origin: "Notes", Removed: true, TypeBefore: model.TypeString, ValidBefore: 10},
		},
		Operations: []model.CleaningOperation{
			{Step: model.StepRemoveColumns, Column: "Notes", Operation: model.OpDropColumn, Reason: "sparse", Cells: 1},
			{Step: model.StepRemoveRows, Operation: model.OpDropRow, Reason: "sparse", Cells: 1},
		},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveRun(context.Background(), &Run{Summary: testSummary("a.csv", time.Now())}); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), "")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

// TestSaveRun tests storing and reading runs.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("assigns an ID and round trips the summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		id, err := db.SaveRun(ctx, &Run{Fingerprint: "abc", Summary: testSummary("a.csv", at)})
		if err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		if len(id) != 36 {
			t.Errorf("expected UUID, got %q", id)
		}

		got, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected summary")
		}
		if got.Source != "a.csv" || got.RowsAfter != 9 || !got.GeneratedAt.Equal(at) {
			t.Errorf("unexpected summary %+v", got)
		}
	})

	t.Run("keeps explicit ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		id, err := db.SaveRun(context.Background(), &Run{ID: "run-1", Summary: testSummary("a.csv", time.Now())})
		if err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		if id != "run-1" {
			t.Errorf("expected run-1, got %q", id)
		}
	})

	t.Run("rejects missing summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.SaveRun(context.Background(), &Run{}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("stores operations and column stats", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		id, err := db.SaveRun(ctx, &Run{Summary: testSummary("a.csv", time.Now())})
		if err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}

		ops, err := db.Operations(ctx, id)
		if err != nil {
			t.Fatalf("Operations failed: %v", err)
		}
		if len(ops) != 2 {
			t.Fatalf("expected 2 operations, got %d", len(ops))
		}
		if ops[0].Operation != model.OpDropColumn || ops[1].Column != "" {
			t.Errorf("unexpected operations %+v", ops)
		}

		stats, err := db.ColumnStats(ctx, id)
		if err != nil {
			t.Fatalf("ColumnStats failed: %v", err)
		}
		if len(stats) != 2 {
			t.Fatalf("expected 2 column stats, got %d", len(stats))
		}
		if stats[0].TypeAfter != model.TypeInteger {
			t.Errorf("expected integer, got %s", stats[0].TypeAfter)
		}
		if !stats[1].Removed {
			t.Error("expected second column to be removed")
		}
	})
}

// TestGetRun tests lookups of unknown runs.
func TestGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	got, err := db.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown run")
	}
}

// TestListRuns tests history listing.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, source := range []string{"a.csv", "b.csv", "a.csv"} {
		run := &Run{Fingerprint: "fp-" + source, Summary: testSummary(source, base.Add(time.Duration(i)*time.Minute))}
		if _, err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	t.Run("lists all runs newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if !runs[0].Timestamp.After(runs[1].Timestamp) {
			t.Error("expected newest run first")
		}
	})

	t.Run("filters by source", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "a.csv")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
		for _, r := range runs {
			if r.Source != "a.csv" {
				t.Errorf("unexpected source %q", r.Source)
			}
		}
	})

	t.Run("finds by fingerprint", func(t *testing.T) {
		ids, err := db.FindByFingerprint(ctx, "fp-b.csv")
		if err != nil {
			t.Fatalf("FindByFingerprint failed: %v", err)
		}
		if len(ids) != 1 {
			t.Errorf("expected 1 run, got %d", len(ids))
		}
	})
}

// TestFingerprint tests input hashing.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, err := Fingerprint(strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Fingerprint(strings.NewReader("a,b\n1,3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected different fingerprints for different inputs")
	}

	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	fromFile, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}
	if fromFile != a {
		t.Errorf("expected %s, got %s", a, fromFile)
	}
}
