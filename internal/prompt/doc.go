// Package prompt renders oracle requests for each cleaning use case and turns
// the free-text answers back into typed values.
//
// Parsing is defensive. Answers wrapped in markdown fences or surrounded by
// prose are tolerated, and any answer that cannot be read yields the use
// case's fallback value instead of an error. Callers therefore never need to
// distinguish "the oracle failed" from "the oracle had nothing to say".
package prompt
