package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("csv input has no header row")

const utf8BOM = "\uFEFF"

// Options configures CSV reading and writing.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims surrounding whitespace from every field.
	TrimSpace bool
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// OptionsForPath returns options suited to the file extension of path.
// Files ending in .tsv are tab separated.
func OptionsForPath(path string) Options {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return Options{Comma: '\t', TrimSpace: true}
	}
	return Options{TrimSpace: true}
}

// ReadCSV reads a table with a header row from r. Rows shorter than the
// header are padded with missing cells and extra fields are ignored, so the
// result is always rectangular.
func ReadCSV(r io.Reader, opt Options) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.comma()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	cells := make([][]model.Cell, len(header))
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		for i := range header {
			field := ""
			if i < len(record) {
				field = record[i]
			}
			if opt.TrimSpace {
				field = strings.TrimSpace(field)
			}
			cells[i] = append(cells[i], model.ParseCell(field))
		}
	}

	columns := make([]*model.Column, len(header))
	for i, name := range header {
		columns[i] = model.NewColumn(name, model.InferType(cells[i]), cells[i])
	}
	return model.NewTable(columns...)
}

// ReadFile reads the CSV or TSV file at path.
func ReadFile(path string) (*model.Table, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f, OptionsForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// WriteCSV writes table to w with a header row. Missing cells are written
// as empty fields.
func WriteCSV(w io.Writer, table *model.Table, opt Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opt.comma()

	if err := cw.Write(table.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, table.NumColumns())
	for i := range table.NumRows() {
		for j, cell := range table.Row(i) {
			record[j] = cell.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes table to path, creating or truncating the file.
func WriteFile(path string, table *model.Table) error {
	f, err := os.Create(path) // #nosec G304 -- output path chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, table, OptionsForPath(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
