package cleaner

import (
	"fmt"
	"math"
	"sort"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// iqrFactor scales the interquartile range to form the outlier fence.
const iqrFactor = 1.5

// Quantile returns the p-quantile of sorted values by linear interpolation
// between the closest ranks at position (n-1)p. sorted must be ascending and
// non-empty.
func Quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	a, b := sorted[int(lo)], sorted[int(hi)]
	return a + (h-lo)*(b-a)
}

// Fence returns the inclusive range [Q1 − 1.5·IQR, Q3 + 1.5·IQR] of values.
// ok is false when values is empty.
func Fence(values []float64) (lower, upper float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - iqrFactor*iqr, q3 + iqrFactor*iqr, true
}

// RemoveOutliers drops, in one pass, every row whose value in any numeric
// column lies strictly outside that column's fence. Missing values are never
// outliers. Quartiles use finite values only, so infinite values always fall
// outside the fence. It returns the number of rows removed.
func (c *Cleaner) RemoveOutliers(b *model.Bundle) int {
	t := b.Table
	drop := make(map[int]struct{})

	for _, col := range t.Columns() {
		if !col.Type.IsNumeric() {
			continue
		}

		var finite []float64
		for _, cell := range col.Cells {
			if v, ok := cell.Number(); ok && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}
		lower, upper, ok := Fence(finite)
		if !ok {
			continue
		}

		flagged := 0
		for i, cell := range col.Cells {
			v, ok := cell.Number()
			if !ok {
				continue
			}
			if v < lower || v > upper {
				drop[i] = struct{}{}
				flagged++
			}
		}
		if flagged > 0 {
			c.logger.Debug("outliers found",
				"column", col.Name, "rows", flagged, "lower", lower, "upper", upper)
		}
	}

	removed := t.DropRows(drop)
	b.RemovedRows += removed
	b.Record(model.CleaningOperation{
		Step:      model.StepRemoveOutliers,
		Operation: model.OpDropOutlier,
		Reason:    fmt.Sprintf("value outside Q1-%.1f*IQR .. Q3+%.1f*IQR", iqrFactor, iqrFactor),
		Cells:     removed,
	})
	c.logger.Info("removed outlier rows", "removed", removed, "remaining", t.NumRows())
	return removed
}
