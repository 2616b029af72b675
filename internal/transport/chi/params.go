package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	"github.com/kailas-cloud/prodsnap/internal/domain/product/filter"
	"github.com/kailas-cloud/prodsnap/internal/domain/product/page"
)

// ListProductsParams are the query parameters of GET /api/products.
type ListProductsParams struct {
	Category *string
	MinPrice *float64
	MaxPrice *float64
	Page     *int
	Limit    *int
}

func bindListParams(r *http.Request) (ListProductsParams, error) {
	var params ListProductsParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"category", &params.Category},
		{"min_price", &params.MinPrice},
		{"max_price", &params.MaxPrice},
		{"page", &params.Page},
		{"limit", &params.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return ListProductsParams{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidQuery, b.name, err)
		}
	}
	return params, nil
}

// toDomain validates the parameters, applying page and limit defaults.
func (p ListProductsParams) toDomain() (filter.Filter, page.Request, error) {
	var category string
	if p.Category != nil {
		category = *p.Category
	}
	f, err := filter.New(category, p.MinPrice, p.MaxPrice)
	if err != nil {
		return filter.Filter{}, page.Request{}, err
	}

	pg, limit := page.DefaultPage, page.DefaultLimit
	if p.Page != nil {
		pg = *p.Page
	}
	if p.Limit != nil {
		limit = *p.Limit
	}
	req, err := page.New(pg, limit)
	if err != nil {
		return filter.Filter{}, page.Request{}, err
	}
	return f, req, nil
}

func bindProductID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: id: %w", domain.ErrInvalidQuery, err)
	}
	return id, nil
}
