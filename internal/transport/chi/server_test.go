package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/analyzer/mock"
	"github.com/kailas-cloud/prodsnap/internal/domain"
	domprod "github.com/kailas-cloud/prodsnap/internal/domain/product"
	domupload "github.com/kailas-cloud/prodsnap/internal/domain/upload"
	"github.com/kailas-cloud/prodsnap/internal/repository/catalog"
	healthuc "github.com/kailas-cloud/prodsnap/internal/usecase/health"
	productuc "github.com/kailas-cloud/prodsnap/internal/usecase/product"
	searchuc "github.com/kailas-cloud/prodsnap/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/prodsnap/internal/usecase/upload"
)

// --- Helpers ---

var loadedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, repo *catalog.Repo, maxBytes int64) http.Handler {
	t.Helper()
	policy, err := domupload.NewPolicy(maxBytes, nil)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	srv := NewServer(
		productuc.New(repo),
		searchuc.New(repo, mock.New(0), searchuc.DefaultConfig()),
		uploaduc.New(policy),
		healthuc.New(repo),
		DefaultInfo("1.0.0"),
	)
	return NewRouter(srv, zap.NewNop(), RouterOptions{})
}

func seededRouter(t *testing.T) http.Handler {
	t.Helper()
	repo, err := catalog.Seed(loadedAt)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return newTestRouter(t, repo, 0)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, target, http.NoBody))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, rr.Body.String())
	}
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.ErrorCode != code {
		t.Errorf("error_code = %q, want %q", resp.ErrorCode, code)
	}
	if resp.Detail == "" {
		t.Error("detail is empty")
	}
	if resp.Timestamp.IsZero() {
		t.Error("timestamp is zero")
	}
	return resp
}

// multipartRequest builds a POST with one file part declared as contentType.
func multipartRequest(t *testing.T, target, field, filename, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err = part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func productIDs(ps []Product) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ProductID
	}
	return ids
}

// --- Root & health ---

func TestRoot(t *testing.T) {
	rr := get(t, seededRouter(t), "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[RootResponse](t, rr)
	if resp.Message != "欢迎使用外贸网站问询智能体 API" || resp.Version != "1.0.0" || resp.Docs != "/docs" {
		t.Errorf("root = %+v", resp)
	}
	want := map[string]string{
		"health": "/health", "upload": "/api/upload", "search": "/api/search", "products": "/api/products",
	}
	for k, v := range want {
		if resp.Endpoints[k] != v {
			t.Errorf("endpoints[%s] = %q, want %q", k, resp.Endpoints[k], v)
		}
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	rr := get(t, seededRouter(t), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Dependencies["catalog"] != "ok" {
		t.Errorf("dependencies = %v", resp.Dependencies)
	}
	if resp.Timestamp.IsZero() || resp.Version != "1.0.0" {
		t.Errorf("health = %+v", resp)
	}
}

func TestHealthCheck_EmptyCatalog(t *testing.T) {
	repo, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	rr := get(t, newTestRouter(t, repo, 0), "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "degraded" || resp.Dependencies["catalog"] != "error" {
		t.Errorf("health = %+v", resp)
	}
}

// --- Listing ---

func TestListProducts_Default(t *testing.T) {
	rr := get(t, seededRouter(t), "/api/products")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decode[ProductListResponse](t, rr)
	if got := productIDs(resp.Products); strings.Join(got, ",") != "P001,P002,P003" {
		t.Errorf("products = %v", got)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Limit != 20 || resp.Pagination.Total != 3 ||
		resp.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestListProducts_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{"category", url.Values{"category": {"厨房用品"}}, []string{"P001"}},
		{"min price", url.Values{"min_price": {"50"}}, []string{"P002", "P003"}},
		{"max price inclusive", url.Values{"max_price": {"59.90"}}, []string{"P001", "P003"}},
		{"min price inclusive", url.Values{"min_price": {"89.99"}}, []string{"P002"}},
		{"range", url.Values{"min_price": {"20"}, "max_price": {"60"}}, []string{"P001", "P003"}},
		{"category and price", url.Values{"category": {"厨房用品"}, "min_price": {"50"}}, nil},
		{"unknown category", url.Values{"category": {"家具"}}, nil},
		{"empty category is unset", url.Values{"category": {""}}, []string{"P001", "P002", "P003"}},
		{"min above max", url.Values{"min_price": {"100"}, "max_price": {"10"}}, nil},
	}
	h := seededRouter(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := get(t, h, "/api/products?"+tc.query.Encode())
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
			}
			resp := decode[ProductListResponse](t, rr)
			got := productIDs(resp.Products)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("products = %v, want %v", got, tc.want)
			}
			if resp.Pagination.Total != len(tc.want) {
				t.Errorf("total = %d, want %d", resp.Pagination.Total, len(tc.want))
			}
		})
	}
}

func TestListProducts_CategoryExample(t *testing.T) {
	resp := decode[ProductListResponse](t, get(t, seededRouter(t), "/api/products?category="+url.QueryEscape("厨房用品")))
	if len(resp.Products) != 1 {
		t.Fatalf("products = %v", productIDs(resp.Products))
	}
	p := resp.Products[0]
	if p.Name != "不锈钢保温杯" || p.Price != 25.99 {
		t.Errorf("product = %s %v", p.Name, p.Price)
	}
}

func TestListProducts_PagesReconstructFilteredSet(t *testing.T) {
	h := seededRouter(t)
	for _, limit := range []int{1, 2, 3, 100} {
		first := decode[ProductListResponse](t, get(t, h, fmt.Sprintf("/api/products?limit=%d", limit)))
		total := first.Pagination.Total
		if want := int(math.Ceil(float64(total) / float64(limit))); first.Pagination.TotalPages != want {
			t.Errorf("limit %d: total_pages = %d, want %d", limit, first.Pagination.TotalPages, want)
		}

		var ids []string
		seen := map[string]bool{}
		for pg := 1; pg <= first.Pagination.TotalPages; pg++ {
			resp := decode[ProductListResponse](t, get(t, h, fmt.Sprintf("/api/products?limit=%d&page=%d", limit, pg)))
			for _, id := range productIDs(resp.Products) {
				if seen[id] {
					t.Errorf("limit %d: duplicate %s", limit, id)
				}
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if strings.Join(ids, ",") != "P001,P002,P003" {
			t.Errorf("limit %d: reconstructed %v", limit, ids)
		}
	}
}

func TestListProducts_PageOutOfRange(t *testing.T) {
	rr := get(t, seededRouter(t), "/api/products?page=9&limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[ProductListResponse](t, rr)
	if resp.Products == nil || len(resp.Products) != 0 {
		t.Errorf("products = %v, want empty list", resp.Products)
	}
	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 2 || resp.Pagination.Page != 9 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestListProducts_HugePage(t *testing.T) {
	rr := get(t, seededRouter(t), "/api/products?page=4611686018427387905&limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decode[ProductListResponse](t, rr)
	if resp.Products == nil || len(resp.Products) != 0 {
		t.Errorf("products = %v, want empty list", resp.Products)
	}
	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestListProducts_InvalidQuery(t *testing.T) {
	h := seededRouter(t)
	for _, q := range []string{
		"page=0", "page=-1", "limit=0", "limit=101", "page=abc", "limit=1.5",
		"min_price=cheap", "max_price=NaN", "min_price=Inf",
	} {
		t.Run(q, func(t *testing.T) {
			assertError(t, get(t, h, "/api/products?"+q), http.StatusBadRequest, ErrorCodeInvalidQuery)
		})
	}
}

// --- Detail ---

func TestGetProduct_EveryCatalogID(t *testing.T) {
	repo, err := catalog.Seed(loadedAt)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	h := newTestRouter(t, repo, 0)
	all, _ := repo.List(t.Context())
	for i := range all {
		want := &all[i]
		rr := get(t, h, "/api/products/"+want.ID())
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", want.ID(), rr.Code)
		}
		got := decode[Product](t, rr)
		if got.ProductID != want.ID() || got.Name != want.Name() || got.Price != want.Price() ||
			got.Category != want.Category() || got.Currency != want.Currency() || got.Stock != want.Stock() {
			t.Errorf("%s: got %+v", want.ID(), got)
		}
		if !got.CreatedAt.Equal(loadedAt) {
			t.Errorf("%s: created_at = %v", want.ID(), got.CreatedAt)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := assertError(t, get(t, seededRouter(t), "/api/products/P999"), http.StatusNotFound, ErrorCodeProductNotFound)
	if resp.Detail != "商品未找到" {
		t.Errorf("detail = %q", resp.Detail)
	}
}

// --- Upload ---

func TestUploadImage_Accepted(t *testing.T) {
	payload := []byte("fake image data")
	rr := do(t, seededRouter(t), multipartRequest(t, "/api/upload", "file", "test.jpg", "image/jpeg", payload))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decode[UploadResponse](t, rr)
	if resp.Message != "图片上传成功" || resp.Filename != "test.jpg" || resp.ContentType != "image/jpeg" {
		t.Errorf("upload = %+v", resp)
	}
	if resp.Size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", resp.Size, len(payload))
	}
	if !strings.HasPrefix(resp.UploadID, "upload_") || len(resp.UploadID) != len("upload_20060102_150405") {
		t.Errorf("upload_id = %q", resp.UploadID)
	}
	if resp.Analysis.Status != "pending" || resp.Analysis.EstimatedTime != "2-5 seconds" {
		t.Errorf("analysis = %+v", resp.Analysis)
	}
	if !strings.HasPrefix(resp.DetectedType, "text/plain") {
		t.Errorf("detected_type = %q", resp.DetectedType)
	}
}

func TestUploadImage_AllowedTypes(t *testing.T) {
	h := seededRouter(t)
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp"} {
		rr := do(t, h, multipartRequest(t, "/api/upload", "file", "a", ct, []byte{1, 2, 3}))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status = %d (%s)", ct, rr.Code, rr.Body.String())
		}
	}
}

func TestUploadImage_UnsupportedType(t *testing.T) {
	h := seededRouter(t)
	for _, ct := range []string{"image/gif", "text/plain", "application/octet-stream"} {
		rr := do(t, h, multipartRequest(t, "/api/upload", "file", "a.gif", ct, []byte("GIF89a")))
		resp := assertError(t, rr, http.StatusBadRequest, ErrorCodeUnsupportedMediaType)
		if resp.Detail != "不支持的文件类型。请上传: image/jpeg, image/png, image/webp" {
			t.Errorf("%s: detail = %q", ct, resp.Detail)
		}
	}
}

func TestUploadImage_SizeCeiling(t *testing.T) {
	const ceiling = 4096
	repo, err := catalog.Seed(loadedAt)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	h := newTestRouter(t, repo, ceiling)

	rr := do(t, h, multipartRequest(t, "/api/upload", "file", "a.png", "image/png", make([]byte, ceiling)))
	if rr.Code != http.StatusOK {
		t.Fatalf("exact ceiling: status = %d (%s)", rr.Code, rr.Body.String())
	}
	if resp := decode[UploadResponse](t, rr); resp.Size != ceiling {
		t.Errorf("size = %d", resp.Size)
	}

	rr = do(t, h, multipartRequest(t, "/api/upload", "file", "a.png", "image/png", make([]byte, ceiling+1)))
	resp := assertError(t, rr, http.StatusBadRequest, ErrorCodeFileTooLarge)
	if resp.Detail != "文件大小超过4096字节限制" {
		t.Errorf("detail = %q", resp.Detail)
	}
}

func TestUploadImage_BodyAboveHardLimit(t *testing.T) {
	repo, err := catalog.Seed(loadedAt)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	h := newTestRouter(t, repo, 1024)

	// An oversized field ahead of the file trips the body limit while seeking the file part.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err = mw.WriteField("note", strings.Repeat("x", multipartOverhead+2048)); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "a.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assertError(t, do(t, h, req), http.StatusBadRequest, ErrorCodeFileTooLarge)
}

func TestUploadImage_DefaultCeilingDetail(t *testing.T) {
	detail := fileTooLargeDetail(domain.NewFileTooLarge(domupload.DefaultMaxBytes+1, domupload.DefaultMaxBytes))
	if detail != "文件大小超过10MB限制" {
		t.Errorf("detail = %q", detail)
	}
}

func TestUploadImage_MissingFile(t *testing.T) {
	h := seededRouter(t)

	rr := do(t, h, multipartRequest(t, "/api/upload", "image", "a.jpg", "image/jpeg", []byte("x")))
	assertError(t, rr, http.StatusBadRequest, ErrorCodeFileRequired)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	assertError(t, do(t, h, req), http.StatusBadRequest, ErrorCodeFileRequired)
}

// --- Search ---

func TestSearchByImage(t *testing.T) {
	rr := do(t, seededRouter(t), multipartRequest(t, "/api/search", "file", "cup.jpg", "image/jpeg", []byte("img")))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)

	if resp.Analysis.PrimaryCategory != mock.PrimaryCategory || resp.Analysis.Confidence != 0.85 {
		t.Errorf("analysis = %+v", resp.Analysis)
	}
	if strings.Join(resp.Analysis.DetectedObjects, ",") != "杯子,不锈钢,保温" {
		t.Errorf("detected_objects = %v", resp.Analysis.DetectedObjects)
	}
	if len(resp.MatchedProducts) > 5 {
		t.Errorf("matched %d products, want at most 5", len(resp.MatchedProducts))
	}
	if resp.TotalMatches != 1 || len(resp.MatchedProducts) != 1 {
		t.Fatalf("total_matches = %d, matched = %d", resp.TotalMatches, len(resp.MatchedProducts))
	}
	m := resp.MatchedProducts[0]
	if m.ProductID != "P001" || m.Category != mock.PrimaryCategory {
		t.Errorf("match = %s (%s)", m.ProductID, m.Category)
	}
	if m.SimilarityScore != 0.7 || strings.Join(m.MatchReasons, ",") != "类别匹配,特征相似" {
		t.Errorf("score = %v, reasons = %v", m.SimilarityScore, m.MatchReasons)
	}
	if !strings.HasPrefix(resp.SearchID, "search_") {
		t.Errorf("search_id = %q", resp.SearchID)
	}
	if resp.ProcessingTime < 0 {
		t.Errorf("processing_time = %v", resp.ProcessingTime)
	}
}

func TestSearchByImage_FlatMatchShape(t *testing.T) {
	rr := do(t, seededRouter(t), multipartRequest(t, "/api/search", "file", "cup.jpg", "image/jpeg", []byte("img")))
	var raw struct {
		MatchedProducts []map[string]any `json:"matched_products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.MatchedProducts) == 0 {
		t.Fatal("no matches")
	}
	for _, key := range []string{"product_id", "name", "price", "category", "similarity_score", "match_reasons"} {
		if _, ok := raw.MatchedProducts[0][key]; !ok {
			t.Errorf("match is missing top-level key %q", key)
		}
	}
}

func TestSearchByImage_TruncatesToFive(t *testing.T) {
	var products []domprod.Product
	for i := range 7 {
		p, err := domprod.New(fmt.Sprintf("K%d", i), domprod.Attributes{
			Name: "cup", Category: mock.PrimaryCategory, Price: 10,
		}, loadedAt, time.Time{})
		if err != nil {
			t.Fatalf("product: %v", err)
		}
		products = append(products, p)
	}
	repo, err := catalog.New(products)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	rr := do(t, newTestRouter(t, repo, 0), multipartRequest(t, "/api/search", "file", "a.jpg", "image/jpeg", []byte("x")))
	resp := decode[SearchResponse](t, rr)
	if len(resp.MatchedProducts) != 5 || resp.TotalMatches != 7 {
		t.Errorf("matched = %d, total = %d", len(resp.MatchedProducts), resp.TotalMatches)
	}
}

func TestSearchByImage_MissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/search", http.NoBody)
	assertError(t, do(t, seededRouter(t), req), http.StatusBadRequest, ErrorCodeFileRequired)
}

// --- Middleware ---

func TestRequestIDHeader(t *testing.T) {
	h := seededRouter(t)

	rr := get(t, h, "/health")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", "smoke-123")
	if got := do(t, h, req).Header().Get("X-Request-ID"); got != "smoke-123" {
		t.Errorf("X-Request-ID = %q, want inbound id", got)
	}
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/products", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rr := do(t, seededRouter(t), req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Errorf("missing Access-Control-Allow-Origin, headers %v", rr.Header())
	}
}

func TestUnknownRoute(t *testing.T) {
	assertError(t, get(t, seededRouter(t), "/api/nope"), http.StatusNotFound, ErrorCodeNotFound)
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := do(t, h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assertError(t, rr, http.StatusInternalServerError, ErrorCodeInternalError)
}

func TestMetricsEndpoint(t *testing.T) {
	h := seededRouter(t)
	_ = get(t, h, "/api/products")

	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "prodsnap_http_requests_total") {
		t.Error("metrics output missing prodsnap_http_requests_total")
	}
}
