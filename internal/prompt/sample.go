package prompt

import (
	"math/rand/v2"
	"sort"
)

// DefaultSampleSize is the largest number of values shown to the oracle in
// one request.
const DefaultSampleSize = 50

// DefaultSeed makes samples reproducible across runs.
const DefaultSeed uint64 = 42

// Sample picks at most n items from values. The same input, n and seed always
// produce the same sample. positions holds the index in values of every
// picked item, in ascending order.
func Sample[T any](values []T, n int, seed uint64) (picked []T, positions []int) {
	if n <= 0 {
		return nil, nil
	}
	if len(values) <= n {
		positions = make([]int, len(values))
		for i := range values {
			positions[i] = i
		}
		return append([]T(nil), values...), positions
	}

	r := rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // sampling, not security
	positions = r.Perm(len(values))[:n]
	sort.Ints(positions)

	picked = make([]T, n)
	for i, p := range positions {
		picked[i] = values[p]
	}
	return picked, positions
}
