package smoke

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DetailProductID is the product fetched by the detail check.
const DetailProductID = "P001"

// DefaultChecks returns the standard suite: health, root, listing, detail, upload, search.
func DefaultChecks() []Check {
	return []Check{
		{Name: "health", Run: checkHealth},
		{Name: "root", Run: checkRoot},
		{Name: "products", Run: checkProducts},
		{Name: "product detail", Run: checkProductDetail},
		{Name: "upload", Run: checkUpload},
		{Name: "search", Run: checkSearch},
	}
}

func checkHealth(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := r.getJSON(ctx, "/health", &resp); err != nil {
		return "", err
	}
	if resp.Status != "healthy" {
		return "", fmt.Errorf("status %q, want healthy", resp.Status)
	}
	return "status " + resp.Status, nil
}

func checkRoot(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		Message string `json:"message"`
		Version string `json:"version"`
	}
	if err := r.getJSON(ctx, "/", &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		return "", errors.New("empty message")
	}
	return fmt.Sprintf("%s (v%s)", resp.Message, resp.Version), nil
}

func checkProducts(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := r.getJSON(ctx, "/api/products", &resp); err != nil {
		return "", err
	}
	detail := fmt.Sprintf("%d products", len(resp.Products))
	if len(resp.Products) > 0 {
		detail += ", first: " + resp.Products[0].Name
	}
	return detail, nil
}

func checkProductDetail(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		ProductID string `json:"product_id"`
		Name      string `json:"name"`
	}
	if err := r.getJSON(ctx, "/api/products/"+DetailProductID, &resp); err != nil {
		return "", err
	}
	if resp.ProductID != DetailProductID {
		return "", fmt.Errorf("product_id %q, want %s", resp.ProductID, DetailProductID)
	}
	return resp.Name, nil
}

// testImage is a text payload declared as a JPEG; the service checks the declared type only.
var testImage = []byte("This is a test image file")

func checkUpload(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		Message  string `json:"message"`
		UploadID string `json:"upload_id"`
	}
	if err := r.postFile(ctx, "/api/upload", "test.jpg", "image/jpeg", testImage, &resp); err != nil {
		return "", err
	}
	if !strings.HasPrefix(resp.UploadID, "upload_") {
		return "", fmt.Errorf("upload_id %q", resp.UploadID)
	}
	return fmt.Sprintf("%s (%s)", resp.Message, resp.UploadID), nil
}

func checkSearch(ctx context.Context, r *Runner) (string, error) {
	var resp struct {
		MatchedProducts []struct {
			ProductID string `json:"product_id"`
		} `json:"matched_products"`
		TotalMatches int    `json:"total_matches"`
		SearchID     string `json:"search_id"`
	}
	if err := r.postFile(ctx, "/api/search", "test.jpg", "image/jpeg", testImage, &resp); err != nil {
		return "", err
	}
	if len(resp.MatchedProducts) > 5 {
		return "", fmt.Errorf("%d matches, want at most 5", len(resp.MatchedProducts))
	}
	if resp.TotalMatches < len(resp.MatchedProducts) {
		return "", fmt.Errorf("total_matches %d below returned %d", resp.TotalMatches, len(resp.MatchedProducts))
	}
	return fmt.Sprintf("%d of %d matches (%s)", len(resp.MatchedProducts), resp.TotalMatches, resp.SearchID), nil
}
