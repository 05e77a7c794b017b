package model

import (
	"strings"
	"time"
)

// Step labels used for progress events and process times.
const (
	StepNormalizeHeaders = "Normalize headers"
	StepRemoveColumns    = "Remove empty columns"
	StepRemoveRows       = "Remove empty rows"
	StepRareValues       = "Remove low count strings"
	StepRemoveOutliers   = "Remove outliers"

	columnStepPrefix = "Clean column: "
)

// ColumnStepLabel returns the label of the cleaning step for one column.
func ColumnStepLabel(column string) string {
	return columnStepPrefix + column
}

// IsColumnStep reports whether a label belongs to a per-column step.
func IsColumnStep(label string) bool {
	return strings.HasPrefix(label, columnStepPrefix)
}

// NonconformanceCounts maps a column name to the number of nonconforming
// cells (missing, infinite or empty text) it held before cleaning.
type NonconformanceCounts map[string]int

// Total sums the counts over all columns.
func (n NonconformanceCounts) Total() int {
	total := 0
	for _, v := range n {
		total += v
	}
	return total
}

// StepTiming is the wall-clock duration of one step.
type StepTiming struct {
	Label   string        `json:"label"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// ProcessTimes records step durations in the order the steps ran.
type ProcessTimes []StepTiming

// Record stores the duration of a step. Recording the same label again
// replaces the earlier value.
func (p *ProcessTimes) Record(label string, elapsed time.Duration) {
	for i := range *p {
		if (*p)[i].Label == label {
			(*p)[i].Elapsed = elapsed
			return
		}
	}
	*p = append(*p, StepTiming{Label: label, Elapsed: elapsed})
}

// Get returns the duration recorded for a label.
func (p ProcessTimes) Get(label string) (time.Duration, bool) {
	for _, st := range p {
		if st.Label == label {
			return st.Elapsed, true
		}
	}
	return 0, false
}

// Total sums all recorded durations.
func (p ProcessTimes) Total() time.Duration {
	var total time.Duration
	for _, st := range p {
		total += st.Elapsed
	}
	return total
}

// Operation names used in the cleaning audit trail.
const (
	OpDropColumn  = "drop_column"
	OpDropRow     = "drop_row"
	OpRename      = "rename"
	OpNullValue   = "null_value"
	OpCoerce      = "coerce"
	OpTransform   = "transform"
	OpDropOutlier = "drop_outlier_row"
)

// CleaningOperation is one entry in the audit trail of a run. It describes
// a group of changes made by one step, not a single cell.
type CleaningOperation struct {
	// Step is the label of the step that made the change.
	Step string `json:"step"`

	// Column is the affected column, empty for row-level operations.
	Column string `json:"column,omitempty"`

	// Operation is one of the Op* constants.
	Operation string `json:"operation"`

	// Reason explains what triggered the change.
	Reason string `json:"reason"`

	// Cells is the number of cells, rows or columns affected.
	Cells int `json:"cells"`
}

// ColumnSummary holds per-column diagnostics gathered by the column cleaner.
type ColumnSummary struct {
	Name          string            `json:"name"`
	DataType      DataType          `json:"data_type"`
	EmptyCells    int               `json:"empty_cells"`
	InvalidCells  int               `json:"invalid_cells"`
	Nonconforming int               `json:"nonconforming"`
	CoercedToNull int               `json:"coerced_to_null"`
	Typos         map[string]string `json:"typos,omitempty"`
}

// Bundle is the result of one cleaning run.
type Bundle struct {
	// Table is the cleaned table.
	Table *Table `json:"-"`

	// NonconformingBefore is the nonconformance snapshot taken before
	// any step ran. It is not updated afterwards.
	NonconformingBefore NonconformanceCounts `json:"nonconforming_before"`

	// ProcessTimes holds the duration of every step that ran.
	ProcessTimes ProcessTimes `json:"process_times"`

	// RemovedColumns counts columns dropped by the density filter.
	RemovedColumns int `json:"removed_columns"`

	// RemovedRows counts rows dropped by the density filter and the
	// outlier remover.
	RemovedRows int `json:"removed_rows"`

	// Columns summarises the column cleaner's work per column.
	Columns []ColumnSummary `json:"columns"`

	// Operations is the audit trail of the run.
	Operations []CleaningOperation `json:"operations"`

	// Cancelled is true when the run stopped early because its context
	// was cancelled. The table then reflects the steps that completed.
	Cancelled bool `json:"cancelled"`

	// Error is the error of the step that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// Record appends an operation to the audit trail. Operations that affected
// nothing are not recorded.
func (b *Bundle) Record(op CleaningOperation) {
	if op.Cells == 0 {
		return
	}
	b.Operations = append(b.Operations, op)
}
