// Package main provides the entry point for the aicleaner CLI.
//
// aicleaner cleans tabular data files. It normalizes headers, drops sparse
// columns and rows, asks a language model to classify columns and flag bad
// cells, and removes numeric outliers. Every run writes a cleaned CSV and a
// report directory.
//
// Usage:
//
//	aicleaner clean data.csv
//	aicleaner history data.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
