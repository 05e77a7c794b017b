package cleaner

import (
	"log/slog"

	"github.com/reab5555/AI-Data-Cleaner/internal/prompt"
)

// Defaults for the cleaning thresholds.
const (
	// DefaultBatchSize is the number of rows classified per oracle request.
	DefaultBatchSize = 50

	// DefaultEmptyThreshold is the share of present values a row or column
	// needs to survive the density filters.
	DefaultEmptyThreshold = 0.5

	// DefaultRareThreshold is the occurrence count below which a string
	// value is nulled.
	DefaultRareThreshold = 2
)

// Cleaner runs the cleaning stages with one set of thresholds.
type Cleaner struct {
	advisor        *prompt.Builder
	logger         *slog.Logger
	batchSize      int
	emptyThreshold float64
	rareThreshold  int
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// WithBatchSize sets the number of rows per classification batch.
func WithBatchSize(n int) Option {
	return func(c *Cleaner) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithEmptyThreshold sets the density threshold, a fraction in (0, 1].
func WithEmptyThreshold(f float64) Option {
	return func(c *Cleaner) {
		if f > 0 && f <= 1 {
			c.emptyThreshold = f
		}
	}
}

// WithRareThreshold sets the minimum count a string value needs to be kept.
func WithRareThreshold(n int) Option {
	return func(c *Cleaner) {
		if n > 0 {
			c.rareThreshold = n
		}
	}
}

// New creates a Cleaner that consults the oracle through advisor. A nil
// advisor means no oracle.
func New(advisor *prompt.Builder, opts ...Option) *Cleaner {
	c := &Cleaner{
		advisor:        advisor,
		batchSize:      DefaultBatchSize,
		emptyThreshold: DefaultEmptyThreshold,
		rareThreshold:  DefaultRareThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.advisor == nil {
		c.advisor = prompt.New(nil, prompt.WithLogger(c.logger))
	}
	return c
}
