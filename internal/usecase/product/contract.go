package product

import (
	"context"

	domprod "github.com/kailas-cloud/prodsnap/internal/domain/product"
)

// Repository reads the product catalog.
type Repository interface {
	List(ctx context.Context) ([]domprod.Product, error)
	Get(ctx context.Context, id string) (domprod.Product, error)
}
