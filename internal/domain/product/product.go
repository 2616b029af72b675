package product

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/kailas-cloud/prodsnap/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DefaultCurrency is applied when a record omits its currency.
const DefaultCurrency = "USD"

// Schema bounds.
const (
	MaxIDLength          = 64
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
	MaxCategoryLength    = 100
)

// Features holds optional descriptive attributes of a product.
type Features struct {
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Material string `json:"material,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Style    string `json:"style,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

// Attributes is the validated input shape of a product record.
type Attributes struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	Category    string   `json:"category" validate:"required,max=100"`
	Price       float64  `json:"price" validate:"gt=0"`
	Currency    string   `json:"currency" validate:"required,max=8"`
	Stock       int      `json:"stock" validate:"gte=0"`
	ImageURLs   []string `json:"image_urls" validate:"dive,required"`
	Features    Features `json:"features"`
}

// Product is the catalog aggregate (immutable value object).
type Product struct {
	id        string
	attrs     Attributes
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Product.
// ID: ^[a-zA-Z0-9_-]+$, 1-64 chars. Currency defaults to USD.
// Zero updatedAt falls back to createdAt.
func New(id string, attrs Attributes, createdAt, updatedAt time.Time) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: product_id is required", domain.ErrInvalidProduct)
	}
	if len(id) > MaxIDLength {
		return Product{}, fmt.Errorf("%w: product_id too long (max %d)", domain.ErrInvalidProduct, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Product{}, fmt.Errorf(
			"%w: product_id must be alphanumeric with underscores and hyphens", domain.ErrInvalidProduct,
		)
	}
	if attrs.Currency == "" {
		attrs.Currency = DefaultCurrency
	}
	if err := domain.ValidateStruct(domain.ErrInvalidProduct, attrs); err != nil {
		return Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	attrs.ImageURLs = slices.Clone(attrs.ImageURLs)
	return Product{id: id, attrs: attrs, createdAt: createdAt, updatedAt: updatedAt}, nil
}

// Reconstruct creates a Product without validation.
func Reconstruct(id string, attrs Attributes, createdAt, updatedAt time.Time) Product {
	return Product{id: id, attrs: attrs, createdAt: createdAt, updatedAt: updatedAt}
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Name returns the display name.
func (p *Product) Name() string { return p.attrs.Name }

// Description returns the long description.
func (p *Product) Description() string { return p.attrs.Description }

// Category returns the category label.
func (p *Product) Category() string { return p.attrs.Category }

// Price returns the unit price.
func (p *Product) Price() float64 { return p.attrs.Price }

// Currency returns the price currency code.
func (p *Product) Currency() string { return p.attrs.Currency }

// Stock returns the units in stock.
func (p *Product) Stock() int { return p.attrs.Stock }

// ImageURLs returns a copy of the product image URLs.
func (p *Product) ImageURLs() []string { return slices.Clone(p.attrs.ImageURLs) }

// Features returns the descriptive attributes.
func (p *Product) Features() Features { return p.attrs.Features }

// CreatedAt returns the creation timestamp.
func (p *Product) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last update timestamp.
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }
