// Package database provides SQLite-based storage for cleaning history.
//
// The HistoryDB stores:
//   - One record per cleaning run, with the full summary as JSON
//   - Per-column statistics of each run
//   - The audit trail of cleaning operations of each run
//
// Runs are identified by a UUID and carry a SHA3-256 fingerprint of the
// input file, so repeated runs over the same data can be found even when
// the file was renamed.
package database
