package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
	healthuc "github.com/kailas-cloud/prodsnap/internal/usecase/health"
	productuc "github.com/kailas-cloud/prodsnap/internal/usecase/product"
	searchuc "github.com/kailas-cloud/prodsnap/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/prodsnap/internal/usecase/upload"
)

// fileField is the multipart form field carrying the image.
const fileField = "file"

// multipartOverhead is the body allowance on top of the file ceiling for boundaries and part headers.
const multipartOverhead = 1 << 20

// Info describes the running service for the root and health endpoints.
type Info struct {
	Message string
	Version string
	Docs    string
}

// DefaultInfo returns the standard service description for version.
func DefaultInfo(version string) Info {
	return Info{
		Message: "欢迎使用外贸网站问询智能体 API",
		Version: version,
		Docs:    "/docs",
	}
}

// Server serves the product lookup HTTP API.
type Server struct {
	products      *productuc.Service
	search        *searchuc.Service
	uploads       *uploaduc.Service
	health        *healthuc.Service
	info          Info
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	products *productuc.Service,
	search *searchuc.Service,
	uploads *uploaduc.Service,
	health *healthuc.Service,
	info Info,
) *Server {
	return &Server{
		products:      products,
		search:        search,
		uploads:       uploads,
		health:        health,
		info:          info,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: s.info.Message,
		Version: s.info.Version,
		Docs:    s.info.Docs,
		Endpoints: map[string]string{
			"health":   "/health",
			"upload":   "/api/upload",
			"search":   "/api/search",
			"products": "/api/products",
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	deps := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		deps[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:       string(report.Status),
		Timestamp:    report.Timestamp,
		Version:      s.info.Version,
		Dependencies: deps,
	})
}

// UploadImage handles POST /api/upload.
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit())

	part, err := filePart(r)
	if err != nil {
		s.handleDomainError(w, r, s.bodyError(err))
		return
	}
	defer func() { _ = part.Close() }()

	receipt, err := s.uploads.Accept(r.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
	if err != nil {
		s.handleDomainError(w, r, s.bodyError(err))
		return
	}

	writeJSON(w, http.StatusOK, receiptToDTO(receipt))
}

// SearchByImage handles POST /api/search.
func (s *Server) SearchByImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit())

	part, err := filePart(r)
	if err != nil {
		s.handleDomainError(w, r, s.bodyError(err))
		return
	}
	defer func() { _ = part.Close() }()

	limit := s.uploads.Policy().MaxBytes()
	size, err := io.Copy(io.Discard, io.LimitReader(part, limit+1))
	if err != nil {
		s.handleDomainError(w, r, s.bodyError(fmt.Errorf("read image: %w", err)))
		return
	}
	if err = s.uploads.Policy().CheckSize(size); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.search.Search(r.Context(), analysis.Image{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Size:        size,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeToDTO(&out))
}

// ListProducts handles GET /api/products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	f, req, err := params.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	listing, err := s.products.List(r.Context(), f, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Products:   productsToDTO(listing.Products),
		Pagination: listing.Pagination,
	})
}

// GetProduct handles GET /api/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := bindProductID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(&p))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) bodyLimit() int64 {
	return s.uploads.Policy().MaxBytes() + multipartOverhead
}

// bodyError maps a request body overflow to the upload ceiling error.
func (s *Server) bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.NewFileTooLarge(mbe.Limit, s.uploads.Policy().MaxBytes())
	}
	return err
}

// filePart advances the multipart stream to the file field without buffering the payload.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFileRequired, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrFileRequired
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read multipart: %w", domain.ErrFileRequired, err)
		}
		if part.FormName() == fileField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
