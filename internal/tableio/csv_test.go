package tableio

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// TestReadCSV tests parsing and type inference.
func TestReadCSV(t *testing.T) {
	t.Parallel()

	t.Run("infers column types", func(t *testing.T) {
		t.Parallel()

		input := "\ufeffid,price,name\n1,2.5,alice\n2,,bob\n3,4,\n"
		table, err := ReadCSV(strings.NewReader(input), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := table.Names()
		if names[0] != "id" {
			t.Errorf("expected BOM to be stripped, got %q", names[0])
		}
		if table.NumRows() != 3 {
			t.Errorf("expected 3 rows, got %d", table.NumRows())
		}

		tests := []struct {
			column   int
			expected model.DataType
		}{
			{0, model.TypeInteger},
			{1, model.TypeFloat},
			{2, model.TypeString},
		}
		for _, tt := range tests {
			if got := table.Column(tt.column).Type; got != tt.expected {
				t.Errorf("column %d: expected %s, got %s", tt.column, tt.expected, got)
			}
		}
		if !table.Column(1).Cells[1].IsMissing() {
			t.Error("expected empty field to be missing")
		}
	})

	t.Run("pads short rows", func(t *testing.T) {
		t.Parallel()

		table, err := ReadCSV(strings.NewReader("a,b,c\n1\n1,2,3,4\n"), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.NumRows() != 2 || table.NumColumns() != 3 {
			t.Fatalf("expected 2x3 table, got %dx%d", table.NumRows(), table.NumColumns())
		}
		if !table.Column(2).Cells[0].IsMissing() {
			t.Error("expected padded cell to be missing")
		}
	})

	t.Run("empty input has no header", func(t *testing.T) {
		t.Parallel()

		_, err := ReadCSV(strings.NewReader(""), Options{})
		if !errors.Is(err, ErrNoHeader) {
			t.Errorf("expected ErrNoHeader, got %v", err)
		}
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()

		table, err := ReadCSV(strings.NewReader("x,y\n"), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.NumRows() != 0 || table.NumColumns() != 2 {
			t.Errorf("expected 0x2 table, got %dx%d", table.NumRows(), table.NumColumns())
		}
	})

	t.Run("tab separated", func(t *testing.T) {
		t.Parallel()

		table, err := ReadCSV(strings.NewReader("a\tb\n1\t x \n"), OptionsForPath("data.TSV"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := table.Column(1).Cells[0].String(); got != "x" {
			t.Errorf("expected trimmed %q, got %q", "x", got)
		}
	})
}

// TestWriteCSV tests that written tables read back the same.
func TestWriteCSV(t *testing.T) {
	t.Parallel()

	table, err := model.NewTable(
		model.NewColumn("n", model.TypeInteger, []model.Cell{model.Int(1), model.Missing()}),
		model.NewColumn("s", model.TypeString, []model.Cell{model.Text("a,b"), model.Text("c")}),
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "n,s\n1,\"a,b\"\n,c\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

// TestFileRoundTrip tests ReadFile and WriteFile.
func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	table, err := ReadCSV(strings.NewReader("a,b\n1,x\n2,y\n"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteFile(path, table); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.NumRows() != 2 || got.Column(0).Type != model.TypeInteger {
		t.Errorf("unexpected table after round trip: %v", got.Names())
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
