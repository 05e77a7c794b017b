package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds process times and the operation audit trail.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeColumns(&sb, summary)
	if w.verbose {
		w.writeTimes(&sb, summary)
		w.writeOperations(&sb, summary)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the run overview.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        DATA CLEANING REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:          %s\n", s.Source)
	fmt.Fprintf(sb, "Generated:       %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Rows:            %d -> %d (removed %d)\n", s.RowsBefore, s.RowsAfter, s.RemovedRows)
	fmt.Fprintf(sb, "Columns:         %d -> %d (removed %d)\n", s.ColumnsBefore, s.ColumnsAfter, s.RemovedColumns)
	fmt.Fprintf(sb, "Valid cells:     %.1f%% -> %.1f%%\n", s.ValidBefore, s.ValidAfter)

	if s.Cancelled {
		sb.WriteString("Status:          CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:          Complete\n")
	}
	sb.WriteString("\n")
}

// writeColumns writes one line per loaded column.
func (w *SimpleWriter) writeColumns(sb *strings.Builder, s *model.Summary) {
	section(sb, "COLUMNS")

	if len(s.Columns) == 0 {
		sb.WriteString("  No columns\n\n")
		return
	}

	for _, c := range s.Columns {
		if c.Removed {
			fmt.Fprintf(sb, "  [-] %s (removed, %.1f%% valid)\n", c.Origin, c.ValidBefore)
			continue
		}
		fmt.Fprintf(sb, "  [+] %s -> %s  %s  %.1f%% -> %.1f%% valid, %d flagged\n",
			c.Origin, c.Name, c.TypeAfter, c.ValidBefore, c.ValidAfter, c.NonconformingFound)
	}
	sb.WriteString("\n")
}

// writeTimes writes the process times.
func (w *SimpleWriter) writeTimes(sb *strings.Builder, s *model.Summary) {
	section(sb, "PROCESS TIMES")

	for _, st := range s.MainSteps {
		fmt.Fprintf(sb, "  %-40s %s\n", st.Label, formatDuration(st.Elapsed))
	}
	for _, st := range s.ColumnSteps {
		fmt.Fprintf(sb, "  %-40s %s\n", st.Label, formatDuration(st.Elapsed))
	}
	fmt.Fprintf(sb, "  %-40s %s\n\n", "TOTAL", formatDuration(s.TotalTime))
}

// writeOperations writes the audit trail.
func (w *SimpleWriter) writeOperations(sb *strings.Builder, s *model.Summary) {
	if len(s.Operations) == 0 {
		return
	}
	section(sb, "OPERATIONS")

	for _, op := range s.Operations {
		target := op.Column
		if target == "" {
			target = "rows"
		}
		fmt.Fprintf(sb, "  * %s %s: %d (%s)\n", op.Operation, target, op.Cells, op.Reason)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by AI Data Cleaner\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
