// Package cleaner implements the cleaning stages: header normalization, the
// density filters, rare-value nulling, per-column classification and
// coercion, and IQR outlier removal.
//
// Every stage works on the table held by a model.Bundle, records what it
// changed in the bundle's audit trail, and leaves the table rectangular.
// Oracle judgments come from a prompt.Builder; when the oracle is silent each
// stage still does its mechanical part.
package cleaner
