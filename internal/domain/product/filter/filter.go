package filter

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	"github.com/kailas-cloud/prodsnap/internal/domain/product"
)

// Filter is a conjunctive set of catalog predicates. Zero value matches everything.
type Filter struct {
	category string
	minPrice *float64
	maxPrice *float64
}

// New validates and creates a Filter. Empty category and nil bounds are unset.
// min > max is allowed and simply matches nothing.
func New(category string, minPrice, maxPrice *float64) (Filter, error) {
	if err := checkBound("min_price", minPrice); err != nil {
		return Filter{}, err
	}
	if err := checkBound("max_price", maxPrice); err != nil {
		return Filter{}, err
	}
	return Filter{category: category, minPrice: copyPtr(minPrice), maxPrice: copyPtr(maxPrice)}, nil
}

// Category returns the exact category predicate ("" when unset).
func (f Filter) Category() string { return f.category }

// MinPrice returns the inclusive lower price bound.
func (f Filter) MinPrice() *float64 { return copyPtr(f.minPrice) }

// MaxPrice returns the inclusive upper price bound.
func (f Filter) MaxPrice() *float64 { return copyPtr(f.maxPrice) }

// Matches reports whether p satisfies every set predicate.
func (f Filter) Matches(p *product.Product) bool {
	if f.category != "" && p.Category() != f.category {
		return false
	}
	if f.minPrice != nil && p.Price() < *f.minPrice {
		return false
	}
	if f.maxPrice != nil && p.Price() > *f.maxPrice {
		return false
	}
	return true
}

// Apply returns the products matching the filter, preserving catalog order.
func (f Filter) Apply(products []product.Product) []product.Product {
	out := make([]product.Product, 0, len(products))
	for i := range products {
		if f.Matches(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func checkBound(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidQuery, name)
	}
	return nil
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
