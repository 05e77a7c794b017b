package cleaner

import (
	"context"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// CleanColumn classifies a column batch by batch, coerces it to the type of
// the first batch, and nulls every cell the oracle flagged as empty or
// invalid. It returns the column's diagnostics.
//
// Only the first batch decides the type; later batches contribute flagged
// positions only. When the first batch gets no oracle judgment the column's
// mechanically inferred type is used instead.
func (c *Cleaner) CleanColumn(ctx context.Context, b *model.Bundle, col *model.Column) model.ColumnSummary {
	n := len(col.Cells)
	typ := model.InferType(col.Cells)
	empty := make(map[int]struct{})
	invalid := make(map[int]struct{})

	for start := 0; start < n; start += c.batchSize {
		end := min(start+c.batchSize, n)
		result, ok := c.advisor.ClassifyColumn(ctx, col.Name, col.Cells[start:end])
		if start == 0 {
			if ok {
				typ = result.DataType
			} else {
				c.logger.Debug("no classification for first batch, using inferred type",
					"column", col.Name, "type", typ)
			}
		}
		collect(empty, result.EmptyIndices, start, n)
		collect(invalid, result.InvalidIndices, start, n)
	}

	summary := model.ColumnSummary{
		Name:         col.Name,
		DataType:     typ,
		EmptyCells:   len(empty),
		InvalidCells: len(invalid),
	}

	if typ == model.TypeString {
		summary.Typos = c.cleanStrings(ctx, b, col)
	} else {
		summary.CoercedToNull = coerce(col, typ)
		b.Record(model.CleaningOperation{
			Step:      model.ColumnStepLabel(col.Name),
			Column:    col.Name,
			Operation: model.OpCoerce,
			Reason:    "value is not a valid " + string(typ),
			Cells:     summary.CoercedToNull,
		})
	}
	col.Type = typ

	flagged := make(map[int]struct{}, len(empty)+len(invalid))
	for i := range empty {
		flagged[i] = struct{}{}
	}
	for i := range invalid {
		flagged[i] = struct{}{}
	}
	for i := range flagged {
		col.Cells[i] = model.Missing()
	}
	summary.Nonconforming = len(flagged)
	b.Record(model.CleaningOperation{
		Step:      model.ColumnStepLabel(col.Name),
		Column:    col.Name,
		Operation: model.OpNullValue,
		Reason:    "flagged empty or invalid",
		Cells:     summary.Nonconforming,
	})

	c.logger.Info("cleaned column",
		"column", col.Name,
		"type", typ,
		"nonconforming", summary.Nonconforming,
		"coerced_to_null", summary.CoercedToNull,
	)
	return summary
}

// collect adds batch-relative indices to set as absolute row positions.
// Positions at or past the column length are stale and skipped.
func collect(set map[int]struct{}, indices []int, offset, length int) {
	for _, i := range indices {
		abs := offset + i
		if i < 0 || abs >= length {
			continue
		}
		set[abs] = struct{}{}
	}
}

// coerce converts every cell of col to typ and returns how many present
// values could not be converted.
func coerce(col *model.Column, typ model.DataType) int {
	lost := 0
	for i, cell := range col.Cells {
		converted := cell.Coerce(typ)
		if !cell.IsMissing() && converted.IsMissing() {
			lost++
		}
		col.Cells[i] = converted
	}
	return lost
}

// cleanStrings runs the string path: oracle transformation, nulling of "nan"
// literals and of oracle-reported rare values, and typo detection. Typos are
// only reported, never applied.
func (c *Cleaner) cleanStrings(ctx context.Context, b *model.Bundle, col *model.Column) map[string]string {
	step := model.ColumnStepLabel(col.Name)

	var distinct []string
	seen := make(map[string]bool)
	for _, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		if s := cell.String(); !seen[s] {
			seen[s] = true
			distinct = append(distinct, s)
		}
	}

	mapping := map[string]string{}
	if len(distinct) > 0 {
		mapping = c.advisor.TransformStrings(ctx, col.Name, distinct)
	}

	transformed, nans := 0, 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		s := cell.String()
		if to, ok := mapping[s]; ok && to != s {
			s = to
			transformed++
		}
		if strings.EqualFold(strings.TrimSpace(s), "nan") {
			col.Cells[i] = model.Missing()
			nans++
			continue
		}
		col.Cells[i] = model.Text(s)
	}
	b.Record(model.CleaningOperation{
		Step: step, Column: col.Name, Operation: model.OpTransform,
		Reason: "oracle string transformation", Cells: transformed,
	})
	b.Record(model.CleaningOperation{
		Step: step, Column: col.Name, Operation: model.OpNullValue,
		Reason: "nan literal", Cells: nans,
	})

	counts := make(map[string]int)
	for _, cell := range col.Cells {
		if !cell.IsMissing() {
			counts[cell.String()]++
		}
	}
	if len(counts) > 0 {
		rare := make(map[string]bool)
		for _, v := range c.advisor.LowCountValues(ctx, col.Name, counts) {
			rare[v] = true
		}
		nulled := 0
		for i, cell := range col.Cells {
			if !cell.IsMissing() && rare[cell.String()] {
				col.Cells[i] = model.Missing()
				nulled++
			}
		}
		b.Record(model.CleaningOperation{
			Step: step, Column: col.Name, Operation: model.OpNullValue,
			Reason: "oracle low-count value", Cells: nulled,
		})
	}

	typos := c.advisor.DetectTypos(ctx, col.Name, col.Cells)
	for from, to := range typos {
		c.logger.Info("possible typo", "column", col.Name, "value", from, "suggestion", to)
	}
	return typos
}
