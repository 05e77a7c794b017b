package prompt

import (
	"context"
	"log/slog"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
	"github.com/reab5555/AI-Data-Cleaner/internal/oracle"
)

// Use case names, used in log records.
const (
	useCheckHeaders     = "check_headers"
	useNormalizeHeaders = "normalize_headers"
	useClassifyColumn   = "classify_column"
	useTypos            = "check_typos"
	useTransform        = "transform_strings"
	useLowCount         = "low_count_values"
)

// Builder asks the oracle one question per use case and parses the answer.
// Every method returns the use case's fallback value when the oracle fails or
// answers with something unreadable.
type Builder struct {
	oracle     oracle.Oracle
	logger     *slog.Logger
	sampleSize int
	seed       uint64
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithSampleSize sets the maximum number of values per request.
func WithSampleSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.sampleSize = n
		}
	}
}

// WithSeed sets the sampling seed.
func WithSeed(seed uint64) Option {
	return func(b *Builder) {
		b.seed = seed
	}
}

// New creates a Builder around an oracle. A nil oracle behaves like
// oracle.Unavailable.
func New(o oracle.Oracle, opts ...Option) *Builder {
	if o == nil {
		o = oracle.Unavailable{}
	}
	b := &Builder{
		oracle:     o,
		sampleSize: DefaultSampleSize,
		seed:       DefaultSeed,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ask sends a prompt and returns the raw answer, or false when the oracle
// gave none.
func (b *Builder) ask(ctx context.Context, useCase, column, prompt string) (string, bool) {
	answer, err := b.oracle.Infer(ctx, prompt)
	if err != nil {
		b.logger.Debug("oracle gave no answer",
			"use_case", useCase,
			"column", column,
			"error", err,
		)
		return "", false
	}
	return answer, true
}

func (b *Builder) fallback(useCase, column string, err error) {
	b.logger.Warn("unreadable oracle answer, using fallback",
		"use_case", useCase,
		"column", column,
		"error", err,
	)
}

// InvalidHeaders returns the positions of headers the oracle considers
// invalid. Positions outside names are dropped.
func (b *Builder) InvalidHeaders(ctx context.Context, names []string) []int {
	answer, ok := b.ask(ctx, useCheckHeaders, "", checkHeadersPrompt(names))
	if !ok {
		return nil
	}
	indices, err := parseIndices(answer)
	if err != nil {
		b.fallback(useCheckHeaders, "", err)
		return nil
	}
	out := indices[:0]
	for _, i := range indices {
		if i < len(names) {
			out = append(out, i)
		}
	}
	return out
}

// NormalizeHeaders returns the oracle's mapping from current header to
// normalized header.
func (b *Builder) NormalizeHeaders(ctx context.Context, names []string) map[string]string {
	answer, ok := b.ask(ctx, useNormalizeHeaders, "", normalizeHeadersPrompt(names))
	if !ok {
		return map[string]string{}
	}
	mapping, err := parseStringMap(answer)
	if err != nil {
		b.fallback(useNormalizeHeaders, "", err)
		return map[string]string{}
	}
	return mapping
}

// ClassifyColumn asks for the type and the empty and invalid positions of a
// batch of values. The returned indices are positions in values. ok is false
// when the result is the fallback classification.
func (b *Builder) ClassifyColumn(ctx context.Context, column string, values []model.Cell) (model.Classification, bool) {
	sample, positions := Sample(values, b.sampleSize, b.seed)
	answer, ok := b.ask(ctx, useClassifyColumn, column, classifyColumnPrompt(column, sample))
	if !ok {
		return model.FallbackClassification(), false
	}
	result, err := parseClassification(answer)
	if err != nil {
		b.fallback(useClassifyColumn, column, err)
		return model.FallbackClassification(), false
	}

	result.EmptyIndices = toBatchPositions(result.EmptyIndices, positions)
	result.InvalidIndices = toBatchPositions(result.InvalidIndices, positions)
	return result, true
}

// toBatchPositions maps sample positions back to positions in the batch.
// Positions the sample does not have are stale and dropped.
func toBatchPositions(indices, positions []int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(positions) {
			out = append(out, positions[i])
		}
	}
	return out
}

// DetectTypos returns suspected typos in a sample of values, mapped to their
// suggested corrections.
func (b *Builder) DetectTypos(ctx context.Context, column string, values []model.Cell) map[string]string {
	sample, _ := Sample(values, b.sampleSize, b.seed)
	answer, ok := b.ask(ctx, useTypos, column, typosPrompt(column, sample))
	if !ok {
		return map[string]string{}
	}
	typos, err := parseTypos(answer)
	if err != nil {
		b.fallback(useTypos, column, err)
		return map[string]string{}
	}
	return typos
}

// TransformStrings returns a mapping from distinct values to their
// transformed form.
func (b *Builder) TransformStrings(ctx context.Context, column string, distinct []string) map[string]string {
	answer, ok := b.ask(ctx, useTransform, column, transformPrompt(column, distinct))
	if !ok {
		return map[string]string{}
	}
	mapping, err := parseStringMap(answer)
	if err != nil {
		b.fallback(useTransform, column, err)
		return map[string]string{}
	}
	return mapping
}

// LowCountValues returns the values the oracle considers too rare to keep.
func (b *Builder) LowCountValues(ctx context.Context, column string, counts map[string]int) []string {
	answer, ok := b.ask(ctx, useLowCount, column, lowCountPrompt(column, sortCounts(counts)))
	if !ok {
		return nil
	}
	values, err := parseValueList(answer)
	if err != nil {
		b.fallback(useLowCount, column, err)
		return nil
	}
	return values
}
