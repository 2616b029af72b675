package page

import (
	"fmt"

	"github.com/kailas-cloud/prodsnap/internal/domain"
)

// Pagination limits.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request is a validated page selection.
type Request struct {
	page  int
	limit int
}

// New validates a page selection: page >= 1, 1 <= limit <= MaxLimit.
func New(page, limit int) (Request, error) {
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidQuery, page)
	}
	if limit < 1 || limit > MaxLimit {
		return Request{}, fmt.Errorf(
			"%w: limit must be between 1 and %d, got %d", domain.ErrInvalidQuery, MaxLimit, limit,
		)
	}
	return Request{page: page, limit: limit}, nil
}

// Default returns the first page with the default limit.
func Default() Request {
	return Request{page: DefaultPage, limit: DefaultLimit}
}

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }

// Bounds returns the half-open [start, end) window for a set of total items.
// A page past the end yields start == end == total, however large the page number.
func (r Request) Bounds(total int) (start, end int) {
	if r.limit <= 0 || r.page-1 > total/r.limit {
		return total, total
	}
	start = min((r.page-1)*r.limit, total)
	end = min(start+r.limit, total)
	return start, end
}

// Meta describes a page over a result set.
type Meta struct {
	Page       int `json:"page" validate:"gte=1"`
	Limit      int `json:"limit" validate:"gte=1,lte=100"`
	Total      int `json:"total" validate:"gte=0"`
	TotalPages int `json:"total_pages" validate:"gte=0"`
}

// MetaFor computes pagination metadata for total matching items.
func (r Request) MetaFor(total int) Meta {
	return Meta{
		Page:       r.page,
		Limit:      r.limit,
		Total:      total,
		TotalPages: TotalPages(total, r.limit),
	}
}

// Validate checks Meta against the pagination schema.
func (m Meta) Validate() error {
	return domain.ValidateStruct(domain.ErrInvalidQuery, m)
}

// TotalPages is ceil(total/limit); 0 for an empty set.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Slice returns the page window of items.
func Slice[T any](items []T, r Request) []T {
	start, end := r.Bounds(len(items))
	return items[start:end]
}
