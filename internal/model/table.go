package model

import (
	"errors"
	"fmt"
)

// ErrRaggedTable is returned when columns of different lengths are combined
// into one table.
var ErrRaggedTable = errors.New("columns have different lengths")

// Column is a named, typed sequence of cells.
type Column struct {
	// Name is the current header. It changes during header normalization.
	Name string `json:"name"`

	// Origin is the header the column had when it was loaded. It never
	// changes and is used to match columns before and after cleaning.
	Origin string `json:"origin"`

	// Type is the column's semantic type. Loaders set it by inference;
	// the column cleaner replaces it with the classified type.
	Type DataType `json:"type"`

	// Cells holds one value per row.
	Cells []Cell `json:"-"`
}

// NewColumn creates a column whose origin is its current name.
func NewColumn(name string, typ DataType, cells []Cell) *Column {
	return &Column{Name: name, Origin: name, Type: typ, Cells: cells}
}

// Present counts the cells that are not missing.
func (c *Column) Present() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.IsMissing() {
			n++
		}
	}
	return n
}

// Table is an ordered set of equally long columns.
//
// Row and column removal always act on the whole table, so every column keeps
// the same length and the same row order.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable combines columns into a table. All columns must have the same
// number of cells.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{columns: columns}
	for i, col := range columns {
		if i == 0 {
			t.rows = len(col.Cells)
			continue
		}
		if len(col.Cells) != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d",
				ErrRaggedTable, col.Name, len(col.Cells), t.rows)
		}
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumCells returns rows times columns.
func (t *Table) NumCells() int {
	return t.rows * len(t.columns)
}

// Columns returns the columns in order. Callers may change names, types and
// individual cells but must not change the length of any column.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column returns the column at index i.
func (t *Table) Column(i int) *Column {
	return t.columns[i]
}

// ColumnByName returns the first column with the given name.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for _, col := range t.columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// Names returns the current column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Row returns a copy of the cells in row i.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Cells[i]
	}
	return row
}

// KeepColumns removes every column for which keep returns false and returns
// the number of columns removed. Remaining columns keep their order.
func (t *Table) KeepColumns(keep func(*Column) bool) int {
	kept := t.columns[:0]
	for _, col := range t.columns {
		if keep(col) {
			kept = append(kept, col)
		}
	}
	removed := len(t.columns) - len(kept)
	for i := len(kept); i < len(t.columns); i++ {
		t.columns[i] = nil
	}
	t.columns = kept
	return removed
}

// DropRows removes the given row indices from every column in one pass and
// returns the number of rows removed. Indices out of range are ignored.
func (t *Table) DropRows(rows map[int]struct{}) int {
	if len(rows) == 0 {
		return 0
	}
	removed := 0
	for i := range rows {
		if i >= 0 && i < t.rows {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	for _, col := range t.columns {
		kept := make([]Cell, 0, t.rows-removed)
		for i, cell := range col.Cells {
			if _, drop := rows[i]; !drop {
				kept = append(kept, cell)
			}
		}
		col.Cells = kept
	}
	t.rows -= removed
	return removed
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		columns[i] = &Column{Name: col.Name, Origin: col.Origin, Type: col.Type, Cells: cells}
	}
	return &Table{columns: columns, rows: t.rows}
}
