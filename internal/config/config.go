package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "aicleaner"

	// DefaultEndpoint is the OpenAI-compatible chat completions endpoint.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultModel is the chat model asked for judgments.
	DefaultModel = "gpt-4o-mini"

	// DefaultTemperature keeps oracle answers close to deterministic.
	DefaultTemperature = 0.01

	// DefaultTimeout bounds a single oracle request.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the number of cells sent per classification request.
	DefaultBatchSize = 50

	// DefaultSampleSize is the number of values sampled into a prompt.
	DefaultSampleSize = 50

	// DefaultSeed makes prompt sampling reproducible.
	DefaultSeed uint64 = 42

	// DefaultEmptyThreshold is the share of present values a row or
	// column needs to be kept.
	DefaultEmptyThreshold = 0.5

	// DefaultRareThreshold is the count below which a string value is rare.
	DefaultRareThreshold = 2

	// DefaultConcurrency is the number of files cleaned at once.
	DefaultConcurrency = 4

	// APIKeyEnv names the environment variable holding the oracle API key.
	APIKeyEnv = "OPENAI_API_KEY"
)

// Config holds all configuration options for a cleaning run. It is
// populated from defaults, the config file and CLI flags, in that order,
// and passed through the application by dependency injection.
type Config struct {
	// Inputs are the CSV files to clean.
	Inputs []string

	// OracleEndpoint is the chat completions URL.
	OracleEndpoint string

	// OracleModel is the model name sent with every request.
	OracleModel string

	// OracleTemperature is the sampling temperature.
	OracleTemperature float64

	// OracleTimeout bounds a single oracle request.
	OracleTimeout time.Duration

	// APIKey authenticates against the oracle. It is read from the
	// environment and never from the config file.
	APIKey string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// NoOracle disables the oracle; every judgment falls back.
	NoOracle bool

	// BatchSize is the number of cells per classification request.
	BatchSize int

	// SampleSize is the number of values sampled into a prompt.
	SampleSize int

	// Seed drives prompt sampling.
	Seed uint64

	// EmptyThreshold is the share of present values a row or column needs.
	EmptyThreshold float64

	// RareThreshold is the count below which a string value is rare.
	RareThreshold int

	// Concurrency is the number of input files cleaned at once.
	Concurrency int

	// OutputDir receives the cleaned CSV and the report directory.
	// Empty means the current directory.
	OutputDir string

	// JSONReport prints the summary as JSON instead of text.
	JSONReport bool

	// MarkdownReport prints the summary as Markdown instead of text.
	MarkdownReport bool

	// Sink is an optional database DSN receiving the cleaned table.
	Sink string

	// DBDir is the directory of the run history database.
	// Defaults to XDG data directory (~/.local/share/aicleaner on Linux).
	DBDir string

	// SaveHistory records each run in the history database.
	SaveHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .aicleaner is searched in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OracleEndpoint:    DefaultEndpoint,
		OracleModel:       DefaultModel,
		OracleTemperature: DefaultTemperature,
		OracleTimeout:     DefaultTimeout,
		BatchSize:         DefaultBatchSize,
		SampleSize:        DefaultSampleSize,
		Seed:              DefaultSeed,
		EmptyThreshold:    DefaultEmptyThreshold,
		RareThreshold:     DefaultRareThreshold,
		Concurrency:       DefaultConcurrency,
		DBDir:             XDGDataDir(),
		SaveHistory:       true,
	}
}

// XDGDataDir returns the XDG data directory for the cleaner.
// On Linux: ~/.local/share/aicleaner
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the cleaner.
// On Linux: ~/.config/aicleaner
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OracleEnabled reports whether oracle requests should be made.
func (c *Config) OracleEnabled() bool {
	return !c.NoOracle && c.APIKey != ""
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.SampleSize <= 0 {
		return ErrInvalidSampleSize
	}
	if c.EmptyThreshold < 0 || c.EmptyThreshold > 1 {
		return ErrInvalidEmptyThreshold
	}
	if c.RareThreshold < 0 {
		return ErrInvalidRareThreshold
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.NoOracle {
		return nil
	}
	if c.OracleEndpoint == "" {
		return ErrMissingEndpoint
	}
	if c.OracleTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.OracleTemperature < 0 || c.OracleTemperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}
