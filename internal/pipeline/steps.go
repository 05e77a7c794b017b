package pipeline

import (
	"context"
	"log/slog"

	"github.com/reab5555/AI-Data-Cleaner/internal/cleaner"
	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// HeaderStep normalizes column names.
type HeaderStep struct {
	cleaner *cleaner.Cleaner
}

// NewHeaderStep creates a header normalization step.
func NewHeaderStep(c *cleaner.Cleaner) *HeaderStep {
	return &HeaderStep{cleaner: c}
}

// Name returns the step name.
func (s *HeaderStep) Name() string {
	return model.StepNormalizeHeaders
}

// Do executes the step.
func (s *HeaderStep) Do(ctx context.Context, bundle *model.Bundle) error {
	s.cleaner.NormalizeHeaders(ctx, bundle)
	return nil
}

// ColumnFilterStep removes sparse columns.
type ColumnFilterStep struct {
	cleaner *cleaner.Cleaner
}

// NewColumnFilterStep creates a column density filter step.
func NewColumnFilterStep(c *cleaner.Cleaner) *ColumnFilterStep {
	return &ColumnFilterStep{cleaner: c}
}

// Name returns the step name.
func (s *ColumnFilterStep) Name() string {
	return model.StepRemoveColumns
}

// Do executes the step.
func (s *ColumnFilterStep) Do(_ context.Context, bundle *model.Bundle) error {
	s.cleaner.FilterColumns(bundle)
	return nil
}

// RowFilterStep removes sparse rows.
type RowFilterStep struct {
	cleaner *cleaner.Cleaner
}

// NewRowFilterStep creates a row density filter step.
func NewRowFilterStep(c *cleaner.Cleaner) *RowFilterStep {
	return &RowFilterStep{cleaner: c}
}

// Name returns the step name.
func (s *RowFilterStep) Name() string {
	return model.StepRemoveRows
}

// Do executes the step.
func (s *RowFilterStep) Do(_ context.Context, bundle *model.Bundle) error {
	s.cleaner.FilterRows(bundle)
	return nil
}

// RareValueStep nulls rare string values.
type RareValueStep struct {
	cleaner *cleaner.Cleaner
}

// NewRareValueStep creates a rare-value nulling step.
func NewRareValueStep(c *cleaner.Cleaner) *RareValueStep {
	return &RareValueStep{cleaner: c}
}

// Name returns the step name.
func (s *RareValueStep) Name() string {
	return model.StepRareValues
}

// Do executes the step.
func (s *RareValueStep) Do(_ context.Context, bundle *model.Bundle) error {
	s.cleaner.NullRareValues(bundle)
	return nil
}

// ColumnStep classifies and cleans one column.
type ColumnStep struct {
	cleaner *cleaner.Cleaner
	column  *model.Column
}

// Name returns the step name, which includes the column name.
func (s *ColumnStep) Name() string {
	return model.ColumnStepLabel(s.column.Name)
}

// Do executes the step.
func (s *ColumnStep) Do(ctx context.Context, bundle *model.Bundle) error {
	summary := s.cleaner.CleanColumn(ctx, bundle, s.column)
	bundle.Columns = append(bundle.Columns, summary)
	return nil
}

// ColumnsStep cleans every column, one at a time and in table order.
// It is an Expander: Run turns it into one ColumnStep per column present
// when it is reached.
type ColumnsStep struct {
	cleaner *cleaner.Cleaner
}

// NewColumnsStep creates the per-column cleaning step.
func NewColumnsStep(c *cleaner.Cleaner) *ColumnsStep {
	return &ColumnsStep{cleaner: c}
}

// Name returns the step name.
func (s *ColumnsStep) Name() string {
	return "Clean columns"
}

// Planned returns the number of columns in the loaded table.
func (s *ColumnsStep) Planned(table *model.Table) int {
	return table.NumColumns()
}

// Expand returns one ColumnStep per current column.
func (s *ColumnsStep) Expand(bundle *model.Bundle) []Step {
	steps := make([]Step, 0, bundle.Table.NumColumns())
	for _, col := range bundle.Table.Columns() {
		steps = append(steps, &ColumnStep{cleaner: s.cleaner, column: col})
	}
	return steps
}

// Do cleans all columns in one go. Run never calls it; it serves callers
// that use the step on its own.
func (s *ColumnsStep) Do(ctx context.Context, bundle *model.Bundle) error {
	for _, step := range s.Expand(bundle) {
		if err := step.Do(ctx, bundle); err != nil {
			return err
		}
	}
	return nil
}

// OutlierStep removes rows with IQR outliers.
type OutlierStep struct {
	cleaner *cleaner.Cleaner
}

// NewOutlierStep creates an outlier removal step.
func NewOutlierStep(c *cleaner.Cleaner) *OutlierStep {
	return &OutlierStep{cleaner: c}
}

// Name returns the step name.
func (s *OutlierStep) Name() string {
	return model.StepRemoveOutliers
}

// Do executes the step.
func (s *OutlierStep) Do(_ context.Context, bundle *model.Bundle) error {
	s.cleaner.RemoveOutliers(bundle)
	return nil
}

// NewCleaningPipeline returns a pipeline with the standard stage order:
// headers, column filter, row filter, rare values, per-column cleaning and
// outlier removal.
func NewCleaningPipeline(c *cleaner.Cleaner, logger *slog.Logger, opts ...Option) *Pipeline {
	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewHeaderStep(c),
		NewColumnFilterStep(c),
		NewRowFilterStep(c),
		NewRareValueStep(c),
		NewColumnsStep(c),
		NewOutlierStep(c),
	)
	return p
}
