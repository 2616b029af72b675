package catalog

import (
	"time"

	"github.com/kailas-cloud/prodsnap/internal/domain/product"
)

// seedFile is the YAML shape of a catalog file.
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          string       `yaml:"product_id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Category    string       `yaml:"category"`
	Price       float64      `yaml:"price"`
	Currency    string       `yaml:"currency"`
	Stock       int          `yaml:"stock"`
	ImageURLs   []string     `yaml:"image_urls"`
	Features    seedFeatures `yaml:"features"`
	CreatedAt   time.Time    `yaml:"created_at"`
	UpdatedAt   time.Time    `yaml:"updated_at"`
}

type seedFeatures struct {
	Color    string `yaml:"color"`
	Size     string `yaml:"size"`
	Material string `yaml:"material"`
	Brand    string `yaml:"brand"`
	Weight   string `yaml:"weight"`
	Style    string `yaml:"style"`
	Pattern  string `yaml:"pattern"`
}

func (s seedProduct) toDomain(loadedAt time.Time) (product.Product, error) {
	created := s.CreatedAt
	if created.IsZero() {
		created = loadedAt
	}
	return product.New(s.ID, product.Attributes{
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Price:       s.Price,
		Currency:    s.Currency,
		Stock:       s.Stock,
		ImageURLs:   s.ImageURLs,
		Features: product.Features{
			Color:    s.Features.Color,
			Size:     s.Features.Size,
			Material: s.Features.Material,
			Brand:    s.Features.Brand,
			Weight:   s.Features.Weight,
			Style:    s.Features.Style,
			Pattern:  s.Features.Pattern,
		},
	}, created, s.UpdatedAt) //nolint:wrapcheck // product.New errors already carry the product id
}
