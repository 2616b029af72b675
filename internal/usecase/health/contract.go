package health

import "context"

// CatalogPinger checks that the product catalog is loaded.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}
