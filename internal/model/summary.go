package model

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is a report-ready view of one cleaning run. It compares the table
// as loaded with the cleaned table in the bundle.
type Summary struct {
	// Source names the input, usually a file path.
	Source string `json:"source"`

	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	RowsBefore     int  `json:"rows_before"`
	ColumnsBefore  int  `json:"columns_before"`
	RowsAfter      int  `json:"rows_after"`
	ColumnsAfter   int  `json:"columns_after"`
	RemovedRows    int  `json:"removed_rows"`
	RemovedColumns int  `json:"removed_columns"`
	Cancelled      bool `json:"cancelled"`

	// ValidBefore and ValidAfter are the shares of present cells over the
	// whole table, in percent.
	ValidBefore float64 `json:"valid_before_pct"`
	ValidAfter  float64 `json:"valid_after_pct"`

	// Columns has one entry per loaded column, in load order.
	Columns []ColumnReport `json:"columns"`

	// TypeCounts counts cleaned columns per data type.
	TypeCounts map[DataType]int `json:"type_counts"`

	// Distributions compares numeric columns before and after cleaning.
	Distributions []Distribution `json:"distributions,omitempty"`

	// MainSteps and ColumnSteps split the process times; TotalTime sums both.
	MainSteps   []StepTiming  `json:"main_steps"`
	ColumnSteps []StepTiming  `json:"column_steps"`
	TotalTime   time.Duration `json:"total_time_ns"`

	// Correlation is the correlation matrix of numeric cleaned columns.
	// It is nil when fewer than two numeric columns remain.
	Correlation *CorrelationMatrix `json:"correlation,omitempty"`

	// Operations is the audit trail of the run.
	Operations []CleaningOperation `json:"operations,omitempty"`
}

// ColumnReport describes one loaded column before and after cleaning.
type ColumnReport struct {
	Origin        string   `json:"origin"`
	Name          string   `json:"name,omitempty"`
	Removed       bool     `json:"removed"`
	TypeBefore    DataType `json:"type_before"`
	TypeAfter     DataType `json:"type_after,omitempty"`
	ValidBefore   float64  `json:"valid_before_pct"`
	ValidAfter    float64  `json:"valid_after_pct"`
	MissingBefore int      `json:"missing_before"`
	MissingAfter  int      `json:"missing_after"`

	// NonconformingBefore comes from the bundle snapshot.
	NonconformingBefore int `json:"nonconforming_before"`

	// NonconformingFound is what the column cleaner flagged.
	NonconformingFound int `json:"nonconforming_found"`
}

// Stats are simple descriptive statistics over present numeric values.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Distribution compares a numeric column before and after cleaning.
type Distribution struct {
	Column string `json:"column"`
	Before Stats  `json:"before"`
	After  Stats  `json:"after"`
}

// CorrelationMatrix holds pairwise Pearson correlations. A nil entry means
// the correlation is undefined, for example for a constant column.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// NewSummary builds a summary from the table as loaded and the run result.
func NewSummary(source string, original *Table, bundle *Bundle, now time.Time) *Summary {
	cleaned := bundle.Table
	s := &Summary{
		Source:         source,
		GeneratedAt:    now,
		RowsBefore:     original.NumRows(),
		ColumnsBefore:  original.NumColumns(),
		RowsAfter:      cleaned.NumRows(),
		ColumnsAfter:   cleaned.NumColumns(),
		RemovedRows:    bundle.RemovedRows,
		RemovedColumns: bundle.RemovedColumns,
		Cancelled:      bundle.Cancelled,
		ValidBefore:    validPercent(original),
		ValidAfter:     validPercent(cleaned),
		TypeCounts:     make(map[DataType]int),
		Operations:     bundle.Operations,
	}

	byOrigin := make(map[string]*Column, cleaned.NumColumns())
	for _, col := range cleaned.Columns() {
		byOrigin[col.Origin] = col
		s.TypeCounts[col.Type]++
	}
	found := make(map[string]int, len(bundle.Columns))
	for _, cs := range bundle.Columns {
		found[cs.Name] = cs.Nonconforming
	}

	for _, before := range original.Columns() {
		cr := ColumnReport{
			Origin:              before.Origin,
			TypeBefore:          before.Type,
			ValidBefore:         percent(before.Present(), len(before.Cells)),
			MissingBefore:       len(before.Cells) - before.Present(),
			NonconformingBefore: bundle.NonconformingBefore[before.Origin],
		}
		after, ok := byOrigin[before.Origin]
		if !ok {
			cr.Removed = true
			s.Columns = append(s.Columns, cr)
			continue
		}
		cr.Name = after.Name
		cr.TypeAfter = after.Type
		cr.ValidAfter = percent(after.Present(), len(after.Cells))
		cr.MissingAfter = len(after.Cells) - after.Present()
		cr.NonconformingFound = found[after.Name]
		s.Columns = append(s.Columns, cr)

		if after.Type.IsNumeric() {
			s.Distributions = append(s.Distributions, Distribution{
				Column: after.Name,
				Before: describe(numbers(before.Cells)),
				After:  describe(numbers(after.Cells)),
			})
		}
	}

	for _, st := range bundle.ProcessTimes {
		if IsColumnStep(st.Label) {
			s.ColumnSteps = append(s.ColumnSteps, st)
		} else {
			s.MainSteps = append(s.MainSteps, st)
		}
	}
	s.TotalTime = bundle.ProcessTimes.Total()
	s.Correlation = correlate(cleaned)

	return s
}

// numbers returns the finite numeric values of cells, reading text where it
// parses as a number. Original columns are often still untyped text.
func numbers(cells []Cell) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		v, ok := c.Number()
		if !ok && c.Kind() == KindString {
			v, ok = ParseFloat(c.String())
		}
		if ok && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	st := Stats{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) > 1 {
		st.StdDev = stat.StdDev(values, nil)
	}
	return st
}

// correlate computes Pearson correlations over rows where both columns are
// present and finite.
func correlate(t *Table) *CorrelationMatrix {
	var numeric []*Column
	for _, col := range t.Columns() {
		if col.Type.IsNumeric() {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) < 2 {
		return nil
	}
	m := &CorrelationMatrix{Values: make([][]*float64, len(numeric))}
	for i, a := range numeric {
		m.Columns = append(m.Columns, a.Name)
		m.Values[i] = make([]*float64, len(numeric))
		for j, b := range numeric {
			r := pairCorrelation(a.Cells, b.Cells)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			m.Values[i][j] = &r
		}
	}
	return m
}

func pairCorrelation(a, b []Cell) float64 {
	var xs, ys []float64
	for i := range a {
		x, okx := a[i].Number()
		y, oky := b[i].Number()
		if !okx || !oky || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

func validPercent(t *Table) float64 {
	present := 0
	for _, col := range t.Columns() {
		present += col.Present()
	}
	return percent(present, t.NumCells())
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
