package result

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/prodsnap/internal/domain/product"
)

// Result is a single search hit: a catalog product with its match score.
type Result struct {
	product  product.Product
	score    float64
	reasons  []string
	distance map[string]float64
}

// New creates a search result. Score must be in [0, 1].
func New(p product.Product, score float64, reasons []string, distance map[string]float64) (Result, error) {
	if score < 0 || score > 1 {
		return Result{}, fmt.Errorf("similarity score must be between 0 and 1, got %v", score)
	}
	return Result{
		product:  p,
		score:    score,
		reasons:  slices.Clone(reasons),
		distance: maps.Clone(distance),
	}, nil
}

// Product returns the matched product.
func (r *Result) Product() product.Product { return r.product }

// Score returns the similarity score.
func (r *Result) Score() float64 { return r.score }

// Reasons returns human-readable match reasons.
func (r *Result) Reasons() []string { return slices.Clone(r.reasons) }

// Distance returns per-metric distances (nil when none were computed).
func (r *Result) Distance() map[string]float64 { return maps.Clone(r.distance) }
