package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/reab5555/AI-Data-Cleaner/internal/cleaner"
	"github.com/reab5555/AI-Data-Cleaner/internal/config"
	"github.com/reab5555/AI-Data-Cleaner/internal/database"
	applog "github.com/reab5555/AI-Data-Cleaner/internal/log"
	"github.com/reab5555/AI-Data-Cleaner/internal/model"
	"github.com/reab5555/AI-Data-Cleaner/internal/oracle"
	"github.com/reab5555/AI-Data-Cleaner/internal/pipeline"
	"github.com/reab5555/AI-Data-Cleaner/internal/prompt"
	"github.com/reab5555/AI-Data-Cleaner/internal/report"
	"github.com/reab5555/AI-Data-Cleaner/internal/sink"
	"github.com/reab5555/AI-Data-Cleaner/internal/tableio"
	"github.com/spf13/cobra"
)

// reportDirPrefix starts the name of every report directory.
const reportDirPrefix = "cleaning_report_"

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean FILE...",
		Short: "Clean one or more CSV files",
		Long: `Clean runs the cleaning pipeline on each input file:

  1. Normalize headers (lowercase, underscores, oracle-suggested fixes)
  2. Remove columns and then rows with too few present values
  3. Null rare string values
  4. Classify every column and coerce its cells to the chosen type
  5. Remove rows holding numeric outliers (1.5 IQR fences)

Each run writes a cleaning_report_<timestamp> directory with report.md,
report.json and the cleaned CSV, prints a summary, and records the run in
the history database.

Examples:
  # Clean a single file
  aicleaner clean sales.csv

  # Clean several files, two at a time
  aicleaner clean --concurrency 2 jan.csv feb.csv mar.csv

  # Clean without contacting the oracle
  aicleaner clean --no-oracle sales.csv

  # Also load the cleaned table into SQLite
  aicleaner clean --sink "sqlite:///tmp/sales.db?table=sales" sales.csv

  # Print the summary as JSON
  aicleaner clean --json sales.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCleanCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .aicleaner in current or home directory)")

	// Oracle flags
	cmd.Flags().Bool("no-oracle", false,
		"Clean without oracle requests")
	cmd.Flags().String("model", config.DefaultModel,
		"Chat model used by the oracle")
	cmd.Flags().String("endpoint", config.DefaultEndpoint,
		"OpenAI-compatible chat completions endpoint")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout for one oracle request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for oracle requests (host:port)")

	// Cleaning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Rows per classification request")
	cmd.Flags().Int("sample-size", config.DefaultSampleSize,
		"Values sampled per column for typo and low-count prompts")
	cmd.Flags().Uint64("seed", config.DefaultSeed,
		"Seed for prompt sampling")
	cmd.Flags().Float64("empty-threshold", config.DefaultEmptyThreshold,
		"Share of present values a column or row needs to be kept")
	cmd.Flags().Int("rare-threshold", config.DefaultRareThreshold,
		"String values occurring fewer times are nulled")
	cmd.Flags().IntP("concurrency", "p", config.DefaultConcurrency,
		"Number of files cleaned at once")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory that receives the report directory (default: current directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("sink", "",
		"Write the cleaned table to a database (sqlite://path?table=t or postgres://...)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runClean(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the config file, changed flags and the
// environment, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.APIKey = os.Getenv(config.APIKeyEnv)

	return cfg, nil
}

// override copies a flag value into dst when the flag was set explicitly.
func override[T any](cmd *cobra.Command, name string, get func(string) (T, error), dst *T) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	noHistory := !cfg.SaveHistory

	return errors.Join(
		override(cmd, "no-oracle", f.GetBool, &cfg.NoOracle),
		override(cmd, "model", f.GetString, &cfg.OracleModel),
		override(cmd, "endpoint", f.GetString, &cfg.OracleEndpoint),
		override(cmd, "timeout", f.GetDuration, &cfg.OracleTimeout),
		override(cmd, "proxy", f.GetString, &cfg.ProxyAddress),
		override(cmd, "batch", f.GetInt, &cfg.BatchSize),
		override(cmd, "sample-size", f.GetInt, &cfg.SampleSize),
		override(cmd, "seed", f.GetUint64, &cfg.Seed),
		override(cmd, "empty-threshold", f.GetFloat64, &cfg.EmptyThreshold),
		override(cmd, "rare-threshold", f.GetInt, &cfg.RareThreshold),
		override(cmd, "concurrency", f.GetInt, &cfg.Concurrency),
		override(cmd, "output-dir", f.GetString, &cfg.OutputDir),
		override(cmd, "json", f.GetBool, &cfg.JSONReport),
		override(cmd, "markdown", f.GetBool, &cfg.MarkdownReport),
		override(cmd, "sink", f.GetString, &cfg.Sink),
		override(cmd, "db-dir", f.GetString, &cfg.DBDir),
		func() error {
			if err := override(cmd, "no-history", f.GetBool, &noHistory); err != nil {
				return err
			}
			cfg.SaveHistory = !noHistory
			return nil
		}(),
	)
}

// newCleaner wires the oracle, prompt builder and cleaner for cfg.
func newCleaner(cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*cleaner.Cleaner, error) {
	var o oracle.Oracle = oracle.Unavailable{}
	switch {
	case cfg.OracleEnabled():
		opts := []oracle.Option{
			oracle.WithModel(cfg.OracleModel),
			oracle.WithTemperature(cfg.OracleTemperature),
			oracle.WithTimeout(cfg.OracleTimeout),
			oracle.WithLogger(logger),
		}
		if cfg.ProxyAddress != "" {
			opts = append(opts, oracle.WithProxy(cfg.ProxyAddress))
		}
		client, err := oracle.NewClient(cfg.OracleEndpoint, cfg.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create oracle client: %w", err)
		}
		o = client
	case !cfg.NoOracle:
		fmt.Fprintf(stderr, "Warning: %s is not set; cleaning without the oracle.\n\n", config.APIKeyEnv)
	}

	advisor := prompt.New(o,
		prompt.WithLogger(logger),
		prompt.WithSampleSize(cfg.SampleSize),
		prompt.WithSeed(cfg.Seed),
	)
	return cleaner.New(advisor,
		cleaner.WithLogger(logger),
		cleaner.WithBatchSize(cfg.BatchSize),
		cleaner.WithEmptyThreshold(cfg.EmptyThreshold),
		cleaner.WithRareThreshold(cfg.RareThreshold),
	), nil
}

// cleanRun holds what every input of one invocation shares.
type cleanRun struct {
	cfg     *config.Config
	cleaner *cleaner.Cleaner
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	db      *database.HistoryDB

	// reportRoot is the cleaning_report_<timestamp> directory.
	reportRoot string

	// mu serializes output in batch mode.
	mu sync.Mutex

	// sinkMu serializes sink writes; batch inputs may share one SQLite file.
	sinkMu sync.Mutex
}

// runClean cleans every input of cfg. Inputs that fail do not stop the
// others; their errors are joined into the result.
func runClean(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	c, err := newCleaner(cfg, logger, stderr)
	if err != nil {
		return err
	}

	r := &cleanRun{
		cfg:        cfg,
		cleaner:    c,
		logger:     logger,
		stdout:     stdout,
		stderr:     stderr,
		reportRoot: filepath.Join(cfg.OutputDir, reportDirName(time.Now())),
	}

	if cfg.SaveHistory {
		r.db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer r.db.Close()
		logger.Info("history database opened", "path", r.db.Path())
	}

	if len(cfg.Inputs) > 1 && cfg.Concurrency > 1 {
		return r.runBatch(ctx)
	}
	return r.runSequential(ctx)
}

func (r *cleanRun) newPipeline() *pipeline.Pipeline {
	return pipeline.NewCleaningPipeline(r.cleaner, r.logger)
}

// runSequential cleans inputs one at a time and prints every progress event.
func (r *cleanRun) runSequential(ctx context.Context) error {
	var errs []error
	for i, source := range r.cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		table, err := tableio.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("failed to load %s: %w", source, err)
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			errs = append(errs, err)
			continue
		}
		original := table.Clone()

		fmt.Fprintf(r.stderr, "Cleaning %s (%d rows, %d columns)...\n", source, table.NumRows(), table.NumColumns())

		var bundle *model.Bundle
		for ev := range r.newPipeline().Run(ctx, table) {
			switch e := ev.(type) {
			case model.StepProgress:
				fmt.Fprintf(r.stderr, "[%3.0f%%] %s\n", e.Fraction()*100, e.Label)
			case model.Finished:
				bundle = e.Bundle
			}
		}

		if err := r.finish(ctx, i, source, original, bundle); err != nil {
			errs = append(errs, err)
		}
		if bundle.Cancelled {
			return errors.Join(append(errs, ctx.Err())...)
		}
	}
	return errors.Join(errs...)
}

// runBatch cleans inputs concurrently with one pipeline per input.
func (r *cleanRun) runBatch(ctx context.Context) error {
	fmt.Fprintf(r.stderr, "Cleaning %d files (concurrency: %d)...\n\n", len(r.cfg.Inputs), r.cfg.Concurrency)
	startTime := time.Now()

	load := func(_ context.Context, source string) (*model.Table, error) {
		return tableio.ReadFile(source)
	}
	bp := pipeline.NewBatchProcessor(r.newPipeline, load,
		pipeline.WithConcurrency(r.cfg.Concurrency),
		pipeline.WithBatchLogger(r.logger),
	)

	var errs []error
	err := bp.ProcessBatchWithCallback(ctx, r.cfg.Inputs, func(res *pipeline.Result, index int) {
		if res.Bundle == nil {
			r.mu.Lock()
			fmt.Fprintf(r.stderr, "[%d/%d] Error: %v\n", index+1, len(r.cfg.Inputs), res.Err)
			errs = append(errs, res.Err)
			r.mu.Unlock()
			return
		}

		ferr := r.finish(ctx, index, res.Source, res.Original, res.Bundle)

		r.mu.Lock()
		defer r.mu.Unlock()
		fmt.Fprintf(r.stderr, "[%d/%d] Cleaned %s\n", index+1, len(r.cfg.Inputs), res.Source)
		if ferr != nil {
			errs = append(errs, ferr)
		}
	})

	fmt.Fprintf(r.stderr, "\nBatch cleaning completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return errors.Join(append(errs, err)...)
}

// finish writes the outputs of one cleaned input: report directory, cleaned
// CSV, summary on stdout, optional sink and the history record.
func (r *cleanRun) finish(ctx context.Context, index int, source string, original *model.Table, bundle *model.Bundle) error {
	summary := model.NewSummary(source, original, bundle, time.Now())
	name := r.outputName(index, source)

	dir := r.reportRoot
	if len(r.cfg.Inputs) > 1 {
		dir = filepath.Join(dir, name)
	}
	paths, err := report.SaveDir(dir, summary, getVersion())
	if err != nil {
		return fmt.Errorf("failed to save report for %s: %w", source, err)
	}
	cleanedPath := filepath.Join(dir, inputStem(source)+"_cleaned.csv")
	if err := tableio.WriteFile(cleanedPath, bundle.Table); err != nil {
		return fmt.Errorf("failed to write cleaned data for %s: %w", source, err)
	}

	r.mu.Lock()
	_, werr := summaryWriter(r.cfg, r.stdout).Write(summary)
	fmt.Fprintf(r.stderr, "Report: %s\nCleaned data: %s\n\n", strings.Join(paths, ", "), cleanedPath)
	r.mu.Unlock()
	if werr != nil {
		return fmt.Errorf("failed to print summary for %s: %w", source, werr)
	}

	var sinkErr error
	switch {
	case r.cfg.Sink == "":
	case bundle.Cancelled:
		r.logger.Warn("run was cancelled, skipping sink", "source", source)
	default:
		sinkErr = r.writeSink(ctx, name, bundle.Table)
	}

	// A cancelled run is still recorded, so persistence ignores ctx cancellation.
	r.saveHistory(context.WithoutCancel(ctx), source, summary)

	return sinkErr
}

func (r *cleanRun) writeSink(ctx context.Context, name string, table *model.Table) error {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()

	dsn := r.cfg.Sink
	if len(r.cfg.Inputs) > 1 {
		var err error
		if dsn, err = sinkDSNFor(dsn, name); err != nil {
			return err
		}
	}

	s, err := sink.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}
	defer s.Close()

	n, err := s.Write(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to write sink: %w", err)
	}
	r.logger.Info("cleaned table written to sink", "dsn", dsn, "rows", n)
	return nil
}

// saveHistory records the run. Failures are logged, not returned.
func (r *cleanRun) saveHistory(ctx context.Context, source string, summary *model.Summary) {
	if r.db == nil {
		return
	}

	fingerprint, err := database.FingerprintFile(source)
	if err != nil {
		r.logger.Warn("failed to fingerprint input", "source", source, "error", err)
	}

	id, err := r.db.SaveRun(ctx, &database.Run{Fingerprint: fingerprint, Summary: summary})
	if err != nil {
		r.logger.Error("failed to save run history", "source", source, "error", err)
		return
	}
	r.logger.Info("run saved to history", "source", source, "id", id)
}

// outputName names the per-input report subdirectory in batch mode.
func (r *cleanRun) outputName(index int, source string) string {
	if len(r.cfg.Inputs) == 1 {
		return inputStem(source)
	}
	return fmt.Sprintf("%02d_%s", index+1, inputStem(source))
}

// summaryWriter picks the stdout format requested by cfg.
func summaryWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// reportDirName returns cleaning_report_<YYYYMMDD_HHMMSS>.
func reportDirName(now time.Time) string {
	return reportDirPrefix + now.Format("20060102_150405")
}

// inputStem is the input file name without directory and extension.
func inputStem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sinkDSNFor gives each input of a batch its own table by suffixing the
// target table with the normalized input name.
func sinkDSNFor(dsn, name string) (string, error) {
	target, err := sink.Parse(dsn)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sink.ErrInvalidDSN, err)
	}
	q := u.Query()
	q.Set("table", target.Table+"_"+cleaner.MechanicalName(name))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
