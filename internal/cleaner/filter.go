package cleaner

import (
	"fmt"
	"math"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// densityThreshold is the number of present values needed out of n.
func densityThreshold(n int, fraction float64) int {
	return int(math.Ceil(float64(n) * fraction))
}

// FilterColumns removes columns with fewer than ceil(rows × threshold)
// present values and returns how many were removed.
func (c *Cleaner) FilterColumns(b *model.Bundle) int {
	t := b.Table
	if t.NumRows() == 0 || t.NumColumns() == 0 {
		return 0
	}

	need := densityThreshold(t.NumRows(), c.emptyThreshold)
	removed := t.KeepColumns(func(col *model.Column) bool {
		present := col.Present()
		if present >= need {
			return true
		}
		b.Record(model.CleaningOperation{
			Step:      model.StepRemoveColumns,
			Column:    col.Name,
			Operation: model.OpDropColumn,
			Reason:    fmt.Sprintf("%d of %d values present, need %d", present, t.NumRows(), need),
			Cells:     1,
		})
		return false
	})

	b.RemovedColumns += removed
	c.logger.Info("removed sparse columns", "removed", removed, "remaining", t.NumColumns())
	return removed
}

// FilterRows removes rows with fewer than ceil(columns × threshold) present
// values, using the column count after FilterColumns, and returns how many
// were removed.
func (c *Cleaner) FilterRows(b *model.Bundle) int {
	t := b.Table
	if t.NumRows() == 0 || t.NumColumns() == 0 {
		return 0
	}

	need := densityThreshold(t.NumColumns(), c.emptyThreshold)
	present := make([]int, t.NumRows())
	for _, col := range t.Columns() {
		for i, cell := range col.Cells {
			if !cell.IsMissing() {
				present[i]++
			}
		}
	}

	drop := make(map[int]struct{})
	for i, n := range present {
		if n < need {
			drop[i] = struct{}{}
		}
	}
	removed := t.DropRows(drop)

	b.RemovedRows += removed
	b.Record(model.CleaningOperation{
		Step:      model.StepRemoveRows,
		Operation: model.OpDropRow,
		Reason:    fmt.Sprintf("fewer than %d of %d values present", need, t.NumColumns()),
		Cells:     removed,
	})
	c.logger.Info("removed sparse rows", "removed", removed, "remaining", t.NumRows())
	return removed
}

// NullRareValues replaces string values that occur fewer than the rare
// threshold times in their column with missing, and returns how many cells
// were nulled.
func (c *Cleaner) NullRareValues(b *model.Bundle) int {
	total := 0
	for _, col := range b.Table.Columns() {
		if col.Type != model.TypeString {
			continue
		}

		counts := make(map[string]int)
		for _, cell := range col.Cells {
			if !cell.IsMissing() {
				counts[cell.String()]++
			}
		}

		nulled := 0
		for i, cell := range col.Cells {
			if cell.IsMissing() {
				continue
			}
			if counts[cell.String()] < c.rareThreshold {
				col.Cells[i] = model.Missing()
				nulled++
			}
		}

		b.Record(model.CleaningOperation{
			Step:      model.StepRareValues,
			Column:    col.Name,
			Operation: model.OpNullValue,
			Reason:    fmt.Sprintf("value occurs fewer than %d times", c.rareThreshold),
			Cells:     nulled,
		})
		total += nulled
	}
	c.logger.Info("nulled rare values", "cells", total)
	return total
}
