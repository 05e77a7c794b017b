package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() for programmatic error handling.
var (
	// ErrNoInput is returned when no input file is specified.
	ErrNoInput = errors.New("no input specified: provide at least one CSV file")

	// ErrInvalidBatchSize is returned when the classification batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidSampleSize is returned when the prompt sample size is not positive.
	ErrInvalidSampleSize = errors.New("invalid sample size: must be positive")

	// ErrInvalidEmptyThreshold is returned when the density threshold is outside [0, 1].
	ErrInvalidEmptyThreshold = errors.New("invalid empty threshold: must be between 0 and 1")

	// ErrInvalidRareThreshold is returned when the rare-value count is negative.
	ErrInvalidRareThreshold = errors.New("invalid rare threshold: must be non-negative")

	// ErrInvalidConcurrency is returned when the file concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the oracle timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidTemperature is returned when the sampling temperature is outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid temperature: must be between 0 and 2")

	// ErrMissingEndpoint is returned when the oracle is enabled without an endpoint.
	ErrMissingEndpoint = errors.New("missing oracle endpoint")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one terminal format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
