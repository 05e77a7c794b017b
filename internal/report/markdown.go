package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// MarkdownWriter outputs summaries as a Markdown document. Charts are
// rendered as mermaid blocks so the report stays plain text.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeValidity(md, summary)
	w.writeTypes(md, summary)
	w.writeNonconforming(md, summary)
	w.writeDistributions(md, summary)
	w.writeProcessTimes(md, summary)
	w.writeCorrelation(md, summary)
	w.writeOperations(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run overview and a status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Data Cleaning Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + s.Source + "`"},
			{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Rows", fmt.Sprintf("%d → %d", s.RowsBefore, s.RowsAfter)},
			{"Columns", fmt.Sprintf("%d → %d", s.ColumnsBefore, s.ColumnsAfter)},
			{"Removed rows", strconv.Itoa(s.RemovedRows)},
			{"Removed columns", strconv.Itoa(s.RemovedColumns)},
			{"Valid cells", fmt.Sprintf("%.1f%% → %.1f%%", s.ValidBefore, s.ValidAfter)},
			{"Status", statusText(s)},
		},
	})
	md.PlainText("")

	switch {
	case s.Cancelled:
		md.Caution("The run was cancelled. The cleaned table reflects only the steps that completed.")
	case s.RowsBefore > 0 && s.RowsAfter*2 < s.RowsBefore:
		md.Warningf("More than half of the rows were removed (%d of %d).", s.RemovedRows, s.RowsBefore)
	case s.RemovedColumns > 0:
		md.Importantf("%d column(s) were removed for having too few values.", s.RemovedColumns)
	default:
		md.Tip("All columns were kept.")
	}
	md.PlainText("")
}

// writeValidity writes the per-column valid and missing percentages.
func (w *MarkdownWriter) writeValidity(md *markdown.Markdown, s *model.Summary) {
	md.H2("Valid Data per Column")
	md.PlainText("")

	if len(s.Columns) == 0 {
		md.PlainText("The table has no columns.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Columns))
	for i, c := range s.Columns {
		name, after, missingAfter := c.Name, pct(c.ValidAfter), strconv.Itoa(c.MissingAfter)
		if c.Removed {
			name, after, missingAfter = "*removed*", "-", "-"
		}
		rows[i] = []string{
			c.Origin,
			name,
			pct(c.ValidBefore),
			after,
			strconv.Itoa(c.MissingBefore),
			missingAfter,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Column", "Cleaned name", "Valid before", "Valid after", "Missing before", "Missing after"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTypes writes the data type distribution as a pie chart.
func (w *MarkdownWriter) writeTypes(md *markdown.Markdown, s *model.Summary) {
	md.H2("Column Data Types")
	md.PlainText("")

	if len(s.TypeCounts) == 0 {
		md.PlainText("No columns remain after cleaning.")
		md.PlainText("")
		return
	}

	types := make([]model.DataType, 0, len(s.TypeCounts))
	for t := range s.TypeCounts {
		types = append(types, t)
	}
	slices.Sort(types)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Data Type Distribution"),
		piechart.WithShowData(true),
	)
	for _, t := range types {
		chart.LabelAndIntValue(string(t), uint64(s.TypeCounts[t])) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeNonconforming writes nonconforming cells found per column.
func (w *MarkdownWriter) writeNonconforming(md *markdown.Markdown, s *model.Summary) {
	md.H2("Nonconforming Cells")
	md.PlainText("")

	var rows [][]string
	for _, c := range s.Columns {
		if c.Removed {
			continue
		}
		rows = append(rows, []string{
			c.Name,
			string(c.TypeBefore),
			string(c.TypeAfter),
			strconv.Itoa(c.NonconformingBefore),
			strconv.Itoa(c.NonconformingFound),
		})
	}
	if len(rows) == 0 {
		md.PlainText("No columns remain after cleaning.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Column", "Type before", "Type after", "Missing or empty before", "Flagged by cleaner"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDistributions writes numeric statistics before and after cleaning.
func (w *MarkdownWriter) writeDistributions(md *markdown.Markdown, s *model.Summary) {
	if len(s.Distributions) == 0 {
		return
	}

	md.H2("Numeric Distributions")
	md.PlainText("")

	rows := make([][]string, 0, len(s.Distributions)*2)
	for _, d := range s.Distributions {
		rows = append(rows,
			statsRow(d.Column, "before", d.Before),
			statsRow(d.Column, "after", d.After),
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Column", "Stage", "Count", "Mean", "Std dev", "Min", "Max"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeProcessTimes writes step durations.
func (w *MarkdownWriter) writeProcessTimes(md *markdown.Markdown, s *model.Summary) {
	md.H2("Process Times")
	md.PlainText("")

	rows := make([][]string, 0, len(s.MainSteps)+len(s.ColumnSteps)+1)
	for _, st := range s.MainSteps {
		rows = append(rows, []string{st.Label, formatDuration(st.Elapsed)})
	}
	for _, st := range s.ColumnSteps {
		rows = append(rows, []string{st.Label, formatDuration(st.Elapsed)})
	}
	rows = append(rows, []string{"**Total**", "**" + formatDuration(s.TotalTime) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Step", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCorrelation writes the correlation matrix of numeric columns.
func (w *MarkdownWriter) writeCorrelation(md *markdown.Markdown, s *model.Summary) {
	if s.Correlation == nil {
		return
	}

	md.H2("Correlation Matrix")
	md.PlainText("")

	header := append([]string{""}, s.Correlation.Columns...)
	rows := make([][]string, len(s.Correlation.Columns))
	for i, name := range s.Correlation.Columns {
		row := []string{name}
		for _, v := range s.Correlation.Values[i] {
			if v == nil {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", *v))
		}
		rows[i] = row
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

// writeOperations writes the audit trail.
func (w *MarkdownWriter) writeOperations(md *markdown.Markdown, s *model.Summary) {
	if len(s.Operations) == 0 {
		return
	}

	md.H2("Cleaning Operations")
	md.PlainText("")

	rows := make([][]string, len(s.Operations))
	for i, op := range s.Operations {
		column := op.Column
		if column == "" {
			column = "-"
		}
		rows[i] = []string{op.Step, column, op.Operation, truncateString(op.Reason, 60), strconv.Itoa(op.Cells)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Step", "Column", "Operation", "Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [AI Data Cleaner](https://github.com/reab5555/AI-Data-Cleaner)*")
}

func statusText(s *model.Summary) string {
	if s.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

func statsRow(column, stage string, st model.Stats) []string {
	if st.Count == 0 {
		return []string{column, stage, "0", "-", "-", "-", "-"}
	}
	return []string{
		column,
		stage,
		strconv.Itoa(st.Count),
		formatFloat(st.Mean),
		formatFloat(st.StdDev),
		formatFloat(st.Min),
		formatFloat(st.Max),
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
