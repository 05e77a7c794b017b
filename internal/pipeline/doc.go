// Package pipeline runs the cleaning stages in order and reports progress.
//
// A Pipeline holds an ordered list of Steps. Each step receives the bundle
// whose table the previous step produced, so the table is owned by exactly
// one stage at a time. Run exposes the run as a lazy sequence of progress
// events ending in a single Finished event that carries the result; Execute
// drains that sequence for callers that do not need progress.
//
// Stages are strictly sequential within one table. BatchProcessor adds
// concurrency across independent inputs only, using errgroup to bound the
// number of tables cleaned at once.
package pipeline
