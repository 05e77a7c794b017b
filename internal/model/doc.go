// Package model defines the core data structures used throughout aicleaner.
//
// This package contains the following main types:
//   - Cell, Column, Table: the in-memory tabular dataset being cleaned
//   - Classification: one oracle judgment about a batch of column values
//   - Bundle: the result of a cleaning run (cleaned table plus diagnostics)
//   - ProgressEvent: the events a cleaning run emits while it works
//   - Summary: a report-ready view derived from the original table and a Bundle
//
// Models live in their own package so that the cleaner, pipeline, report and
// database packages can share them without import cycles. Everything that
// leaves the process (reports, run history) is serializable to JSON.
package model
