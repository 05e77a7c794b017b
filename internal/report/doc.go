// Package report renders cleaning summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: a Markdown document with tables and mermaid charts
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter. SaveDir writes the
// Markdown and JSON reports into a report directory.
package report
