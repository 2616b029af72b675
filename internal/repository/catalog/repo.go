package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	"github.com/kailas-cloud/prodsnap/internal/domain/product"
)

//go:embed seed.yaml
var seedYAML []byte

// Repo is the immutable in-memory product table.
// Implements usecase/product.Repository and usecase/search.CatalogReader.
type Repo struct {
	products []product.Product
}

// New builds a catalog from already-validated products.
// Duplicate product ids are rejected.
func New(products []product.Product) (*Repo, error) {
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		id := products[i].ID()
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate product_id %q", domain.ErrInvalidProduct, id)
		}
		seen[id] = struct{}{}
	}
	return &Repo{products: slices.Clone(products)}, nil
}

// Load parses a YAML catalog. Records without created_at are stamped with loadedAt.
func Load(data []byte, loadedAt time.Time) (*Repo, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]product.Product, 0, len(f.Products))
	for i, rec := range f.Products {
		p, err := rec.toDomain(loadedAt)
		if err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", i, err)
		}
		products = append(products, p)
	}
	return New(products)
}

// LoadFile reads and parses a YAML catalog from disk.
func LoadFile(path string, loadedAt time.Time) (*Repo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data, loadedAt)
}

// Seed returns the built-in catalog.
func Seed(loadedAt time.Time) (*Repo, error) {
	return Load(seedYAML, loadedAt)
}

// List returns every product in catalog order. The slice is a copy.
func (r *Repo) List(_ context.Context) ([]product.Product, error) {
	return slices.Clone(r.products), nil
}

// Get returns a product by id via linear scan.
func (r *Repo) Get(_ context.Context, id string) (product.Product, error) {
	for i := range r.products {
		if r.products[i].ID() == id {
			return r.products[i], nil
		}
	}
	return product.Product{}, fmt.Errorf("product %q: %w", id, domain.ErrProductNotFound)
}

// Count returns the number of products.
func (r *Repo) Count() int { return len(r.products) }

// Ping reports whether the catalog has anything to serve.
func (r *Repo) Ping(_ context.Context) error {
	if len(r.products) == 0 {
		return domain.ErrCatalogUnavailable
	}
	return nil
}
