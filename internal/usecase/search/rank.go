package search

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/prodsnap/internal/domain/search/result"
)

// rank orders results by score descending, keeping catalog order among ties, and keeps the top n.
func rank(results []result.Result, n int) []result.Result {
	slices.SortStableFunc(results, func(a, b result.Result) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}
