package search

import (
	"context"

	domprod "github.com/kailas-cloud/prodsnap/internal/domain/product"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
)

// CatalogReader lists catalog products for matching.
type CatalogReader interface {
	List(ctx context.Context) ([]domprod.Product, error)
}

// Analyzer classifies an uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, img analysis.Image) (analysis.Result, error)
}
