package product

import (
	"context"
	"fmt"

	domprod "github.com/kailas-cloud/prodsnap/internal/domain/product"
	"github.com/kailas-cloud/prodsnap/internal/domain/product/filter"
	"github.com/kailas-cloud/prodsnap/internal/domain/product/page"
)

// Listing is one page of filtered catalog products.
type Listing struct {
	Products   []domprod.Product
	Pagination page.Meta
}

// Service serves catalog listing and lookup.
type Service struct {
	repo Repository
}

// New creates a product service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List filters the catalog (category, then min price, then max price) and returns the requested page.
// A page past the end yields an empty product list with accurate pagination totals.
func (s *Service) List(ctx context.Context, f filter.Filter, req page.Request) (Listing, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("list catalog: %w", err)
	}

	matched := f.Apply(all)
	meta := req.MetaFor(len(matched))
	if err := meta.Validate(); err != nil {
		return Listing{}, fmt.Errorf("pagination: %w", err)
	}
	return Listing{
		Products:   page.Slice(matched, req),
		Pagination: meta,
	}, nil
}

// Get returns a single product by ID.
func (s *Service) Get(ctx context.Context, id string) (domprod.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("get product %q: %w", id, err)
	}
	return p, nil
}
