package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// Loader reads the table for one input.
type Loader func(ctx context.Context, source string) (*model.Table, error)

// Result is the outcome of cleaning one input in a batch.
type Result struct {
	// Source is the input as given to the batch.
	Source string

	// Original is a copy of the table as loaded, kept for reporting.
	Original *model.Table

	// Bundle is the cleaning result. It is nil when loading failed.
	Bundle *model.Bundle

	// Err is the load or pipeline error, if any.
	Err error
}

// BatchProcessor cleans several independent inputs concurrently. Each input
// gets its own pipeline, and inside one pipeline everything stays sequential.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input.
	pipelineFactory func() *Pipeline

	// load reads one input.
	load Loader

	// concurrency is the maximum number of inputs cleaned at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent inputs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, load Loader, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		load:            load,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch cleans all sources and returns one result per source, in
// input order. A failing source does not stop the others; its error is kept
// in its Result. The returned error is only set when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*Result, error) {
	results := make([]*Result, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(r *Result, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback cleans all sources and calls callback for each
// one as soon as it completes. The callback runs on the worker goroutine, so
// it must be safe for concurrent use unless it only touches its own index.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(result *Result, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := bp.process(ctx, source)
			if result.Err != nil {
				bp.logger.Warn("cleaning failed", "source", source, "error", result.Err)
			} else {
				bp.logger.Info("cleaning completed", "source", source, "index", i+1, "total", len(sources))
			}
			callback(result, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (bp *BatchProcessor) process(ctx context.Context, source string) *Result {
	result := &Result{Source: source}

	table, err := bp.load(ctx, source)
	if err != nil {
		result.Err = fmt.Errorf("failed to load %s: %w", source, err)
		return result
	}
	result.Original = table.Clone()

	bundle, err := bp.pipelineFactory().Execute(ctx, table)
	result.Bundle = bundle
	result.Err = err
	return result
}
