package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/config"
	"github.com/reab5555/AI-Data-Cleaner/internal/database"
	"github.com/reab5555/AI-Data-Cleaner/internal/report"
	"github.com/spf13/cobra"
)

// timeLayout is how run timestamps are shown in listings.
const timeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [FILE]",
		Short: "Show past cleaning runs",
		Long: `History lists the cleaning runs recorded in the history database.

Given a FILE, only runs of that input are listed. Runs whose input had the
same content as the file has now are marked with "=".

Examples:
  # List all runs
  aicleaner history

  # List runs of one file
  aicleaner history sales.csv

  # Show how one column changed across runs of a file
  aicleaner history --column price sales.csv

  # Show the full report of a run
  aicleaner history --id 0b6f3c9e-...

  # Output as JSON
  aicleaner history --json sales.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("id", "",
		"Show the report of the run with this ID")
	cmd.Flags().String("column", "",
		"Show the statistics of one loaded column across runs (requires FILE)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	column, err := cmd.Flags().GetString("column")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate before opening the database so bad arguments leave no file behind.
	var source string
	if len(args) > 0 {
		source = args[0]
	}
	if column != "" && source == "" {
		return errors.New("--column requires a FILE argument")
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case id != "":
		return showRun(ctx, out, db, id, jsonOutput)
	case column != "":
		return showColumnHistory(ctx, out, db, source, column, jsonOutput)
	default:
		return listRuns(ctx, out, db, source, jsonOutput)
	}
}

// showRun prints the stored report of one run.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id string, jsonOutput bool) error {
	summary, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	var w report.Writer = report.NewSimpleWriter(out, report.WithVerbose(true))
	if jsonOutput {
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	}
	_, err = w.Write(summary)
	return err
}

// listRuns prints run metadata, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, source string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		if runs == nil {
			runs = []database.RunMetadata{}
		}
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		if source != "" {
			fmt.Fprintf(out, "No runs found for %s\n", source)
		} else {
			fmt.Fprintln(out, "No runs found.")
		}
		fmt.Fprintln(out, "\nUse 'aicleaner clean <file>' to clean a file and record the run.")
		return nil
	}

	current := currentFingerprint(source)

	fmt.Fprintf(out, "Run history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-11s  %-9s  %s\n", "ID", "Date", "Rows", "Columns", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, run := range runs {
		marker := " "
		if current != "" && run.Fingerprint == current {
			marker = "="
		}
		status := ""
		if run.Cancelled {
			status = " (cancelled)"
		}
		fmt.Fprintf(out, "%s %-36s  %-19s  %-11s  %-9s  %s%s\n",
			marker,
			run.ID,
			run.Timestamp.Local().Format(timeLayout),
			fmt.Sprintf("%d->%d", run.RowsBefore, run.RowsAfter),
			fmt.Sprintf("%d->%d", run.ColumnsBefore, run.ColumnsAfter),
			run.Source,
			status,
		)
	}

	fmt.Fprintln(out, "\nUse 'aicleaner history --id <ID>' to see the report of a run.")
	return nil
}

// columnRun is one row of a column history listing.
type columnRun struct {
	database.ColumnHistory
	Timestamp string `json:"timestamp"`
}

// showColumnHistory prints one loaded column's statistics in every run of source.
func showColumnHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, source, column string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	rows := make([]columnRun, 0, len(runs))
	for _, run := range runs {
		stats, err := db.ColumnStats(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to load column stats: %w", err)
		}
		for _, st := range stats {
			if st.Origin == column || st.Name == column {
				rows = append(rows, columnRun{ColumnHistory: st, Timestamp: run.Timestamp.Local().Format(timeLayout)})
				break
			}
		}
	}

	if jsonOutput {
		return writeJSON(out, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No history for column %q of %s\n", column, source)
		return nil
	}

	fmt.Fprintf(out, "History of column %q in %s (%d runs):\n\n", column, source, len(rows))
	fmt.Fprintf(out, "  %-19s  %-20s  %-18s  %s\n", "Date", "Name", "Type", "Valid %")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, row := range rows {
		name, typ := row.Name, fmt.Sprintf("%s->%s", row.TypeBefore, row.TypeAfter)
		valid := fmt.Sprintf("%.1f -> %.1f", row.ValidBefore, row.ValidAfter)
		if row.Removed {
			name, typ, valid = "(removed)", string(row.TypeBefore), fmt.Sprintf("%.1f", row.ValidBefore)
		}
		fmt.Fprintf(out, "  %-19s  %-20s  %-18s  %s\n", row.Timestamp, name, typ, valid)
	}
	return nil
}

// currentFingerprint returns the digest of source, or "" if it cannot be read.
func currentFingerprint(source string) string {
	if source == "" {
		return ""
	}
	if _, err := os.Stat(source); err != nil {
		return ""
	}
	fp, err := database.FingerprintFile(source)
	if err != nil {
		return ""
	}
	return fp
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
