package chi

import (
	"time"

	domprod "github.com/kailas-cloud/prodsnap/internal/domain/product"
	"github.com/kailas-cloud/prodsnap/internal/domain/product/page"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/result"
	domupload "github.com/kailas-cloud/prodsnap/internal/domain/upload"
	searchuc "github.com/kailas-cloud/prodsnap/internal/usecase/search"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail    string    `json:"detail"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes.
const (
	ErrorCodeProductNotFound      ErrorCode = "product_not_found"
	ErrorCodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	ErrorCodeFileTooLarge         ErrorCode = "file_too_large"
	ErrorCodeFileRequired         ErrorCode = "file_required"
	ErrorCodeInvalidQuery         ErrorCode = "invalid_query"
	ErrorCodeCatalogUnavailable   ErrorCode = "catalog_unavailable"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed     ErrorCode = "method_not_allowed"
	ErrorCodeInternalError        ErrorCode = "internal_error"
)

// RootResponse describes the service.
type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Docs      string            `json:"docs"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the liveness report.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Product is the wire form of a catalog product.
type Product struct {
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Currency    string           `json:"currency"`
	Stock       int              `json:"stock"`
	ImageURLs   []string         `json:"image_urls"`
	Features    domprod.Features `json:"features"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Products   []Product `json:"products"`
	Pagination page.Meta `json:"pagination"`
}

// UploadAnalysis is the placeholder analysis state of an upload.
type UploadAnalysis struct {
	Status        string `json:"status"`
	EstimatedTime string `json:"estimated_time"`
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	Message      string         `json:"message"`
	Filename     string         `json:"filename"`
	ContentType  string         `json:"content_type"`
	Size         int64          `json:"size"`
	UploadID     string         `json:"upload_id"`
	DetectedType string         `json:"detected_type"`
	Analysis     UploadAnalysis `json:"analysis"`
}

// ImageAnalysis is the wire form of an image classification.
type ImageAnalysis struct {
	DetectedObjects []string       `json:"detected_objects"`
	PrimaryCategory string         `json:"primary_category"`
	Colors          []string       `json:"colors"`
	Materials       []string       `json:"materials"`
	Confidence      float64        `json:"confidence"`
	Features        map[string]any `json:"features,omitempty"`
}

// MatchedProduct is a product flattened together with its match score.
type MatchedProduct struct {
	Product
	SimilarityScore float64            `json:"similarity_score"`
	MatchReasons    []string           `json:"match_reasons"`
	DistanceMetrics map[string]float64 `json:"distance_metrics,omitempty"`
}

// SearchResponse is the outcome of an image search.
type SearchResponse struct {
	Analysis        ImageAnalysis    `json:"analysis"`
	MatchedProducts []MatchedProduct `json:"matched_products"`
	TotalMatches    int              `json:"total_matches"`
	SearchID        string           `json:"search_id"`
	ProcessingTime  float64          `json:"processing_time"`
}

func productToDTO(p *domprod.Product) Product {
	urls := p.ImageURLs()
	if urls == nil {
		urls = []string{}
	}
	return Product{
		ProductID:   p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category(),
		Price:       p.Price(),
		Currency:    p.Currency(),
		Stock:       p.Stock(),
		ImageURLs:   urls,
		Features:    p.Features(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func productsToDTO(ps []domprod.Product) []Product {
	out := make([]Product, len(ps))
	for i := range ps {
		out[i] = productToDTO(&ps[i])
	}
	return out
}

func receiptToDTO(r domupload.Receipt) UploadResponse {
	return UploadResponse{
		Message:      "图片上传成功",
		Filename:     r.Filename(),
		ContentType:  r.ContentType(),
		Size:         r.Size(),
		UploadID:     r.ID(),
		DetectedType: r.DetectedType(),
		Analysis: UploadAnalysis{
			Status:        r.AnalysisStatus(),
			EstimatedTime: domupload.PendingEstimate,
		},
	}
}

func analysisToDTO(a analysis.Result) ImageAnalysis {
	return ImageAnalysis{
		DetectedObjects: a.DetectedObjects(),
		PrimaryCategory: a.PrimaryCategory(),
		Colors:          a.Colors(),
		Materials:       a.Materials(),
		Confidence:      a.Confidence(),
		Features:        a.Features(),
	}
}

func matchToDTO(r *result.Result) MatchedProduct {
	p := r.Product()
	return MatchedProduct{
		Product:         productToDTO(&p),
		SimilarityScore: r.Score(),
		MatchReasons:    r.Reasons(),
		DistanceMetrics: r.Distance(),
	}
}

func outcomeToDTO(o *searchuc.Outcome) SearchResponse {
	matches := make([]MatchedProduct, len(o.Matches))
	for i := range o.Matches {
		matches[i] = matchToDTO(&o.Matches[i])
	}
	return SearchResponse{
		Analysis:        analysisToDTO(o.Analysis),
		MatchedProducts: matches,
		TotalMatches:    o.TotalMatches,
		SearchID:        o.ID,
		ProcessingTime:  o.ProcessingTime.Seconds(),
	}
}
