package pipeline

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/reab5555/AI-Data-Cleaner/internal/cleaner"
	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps run in sequence; each one receives the bundle holding the table as
// the previous step left it.
type Step interface {
	// Do executes the step. It may replace or mutate bundle.Table but must
	// leave it rectangular. Non-critical problems are recorded in the
	// bundle and reported as nil.
	Do(ctx context.Context, bundle *model.Bundle) error

	// Name returns the step label used for progress and timing.
	Name() string
}

// Expander is a Step that unfolds into sub-steps once the table it will see
// is known. Run executes the sub-steps individually so that each one gets
// its own progress event and timing.
type Expander interface {
	Step

	// Expand returns the sub-steps to run in place of this step.
	Expand(bundle *model.Bundle) []Step

	// Planned returns how many sub-steps the step expects for the table as
	// loaded. It is used to size progress fractions up front.
	Planned(table *model.Table) int
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to keep going after a step fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The last error is kept in the bundle.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of top-level steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all top-level steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// planned counts the progress units for table.
func (p *Pipeline) planned(table *model.Table) int {
	total := 0
	for _, step := range p.steps {
		if e, ok := step.(Expander); ok {
			total += e.Planned(table)
			continue
		}
		total++
	}
	return total
}

// Run cleans table and returns the progress events lazily. Nothing happens
// until the sequence is iterated, and stopping the iteration early stops the
// run after the current step.
//
// Every completed step yields a model.StepProgress whose fraction is the
// number of completed steps over the number planned when the run started.
// The last event is always model.Finished carrying the bundle. Cancellation
// of ctx is checked between steps only; a cancelled run still finishes with
// the partial bundle and Cancelled set.
func (p *Pipeline) Run(ctx context.Context, table *model.Table) iter.Seq[model.ProgressEvent] {
	return func(yield func(model.ProgressEvent) bool) {
		bundle := &model.Bundle{
			Table:               table,
			NonconformingBefore: cleaner.CountNonconforming(table),
		}
		total := p.planned(table)
		completed := 0

		p.logger.Info("cleaning started",
			"rows", table.NumRows(),
			"columns", table.NumColumns(),
			"cells", table.NumCells(),
		)

	steps:
		for _, step := range p.steps {
			sub := []Step{step}
			if e, ok := step.(Expander); ok {
				sub = e.Expand(bundle)
			}

			for _, s := range sub {
				if err := ctx.Err(); err != nil {
					p.logger.Warn("pipeline cancelled", "step", s.Name(), "reason", err)
					bundle.Cancelled = true
					break steps
				}

				p.logger.Debug("executing step", "step", s.Name())
				start := time.Now()
				err := s.Do(ctx, bundle)
				bundle.ProcessTimes.Record(s.Name(), time.Since(start))

				if err != nil {
					p.logger.Error("step failed", "step", s.Name(), "error", err)
					bundle.Error = err
					bundle.ErrorMessage = err.Error()
					if !p.continueOnError {
						break steps
					}
				}

				completed++
				if !yield(model.StepProgress{Completed: completed, Total: total, Label: s.Name()}) {
					return
				}
			}
		}

		p.logger.Info("cleaning finished",
			"rows", bundle.Table.NumRows(),
			"columns", bundle.Table.NumColumns(),
			"cells", bundle.Table.NumCells(),
			"removed_rows", bundle.RemovedRows,
			"removed_columns", bundle.RemovedColumns,
			"elapsed", bundle.ProcessTimes.Total(),
		)
		yield(model.Finished{Bundle: bundle})
	}
}

// Execute runs the pipeline to completion without reporting progress and
// returns the bundle. The error is the step error that stopped the run, or
// the context error if the run was cancelled.
func (p *Pipeline) Execute(ctx context.Context, table *model.Table) (*model.Bundle, error) {
	var bundle *model.Bundle
	for ev := range p.Run(ctx, table) {
		if done, ok := ev.(model.Finished); ok {
			bundle = done.Bundle
		}
	}
	if bundle.Cancelled {
		return bundle, ctx.Err()
	}
	if bundle.Error != nil && !p.continueOnError {
		return bundle, bundle.Error
	}
	return bundle, nil
}
