package cleaner

import "github.com/reab5555/AI-Data-Cleaner/internal/model"

// CountNonconforming counts, per column, the cells that are missing,
// infinite, or empty strings.
func CountNonconforming(t *model.Table) model.NonconformanceCounts {
	counts := make(model.NonconformanceCounts, t.NumColumns())
	for _, col := range t.Columns() {
		n := 0
		for _, cell := range col.Cells {
			switch {
			case cell.IsMissing(), cell.IsInf():
				n++
			case cell.Kind() == model.KindString && cell.String() == "":
				n++
			}
		}
		counts[col.Name] = n
	}
	return counts
}
