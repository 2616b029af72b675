package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrUnsupportedMediaType signals an upload outside the image allow-list.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrFileTooLarge signals an upload above the size ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrFileRequired signals a multipart request without a file part.
	ErrFileRequired = errors.New("file is required")
	// ErrInvalidQuery signals malformed or out-of-range query parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidProduct signals a catalog record that violates the product schema.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrCatalogUnavailable signals an empty or unloaded catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// MediaTypeError wraps ErrUnsupportedMediaType with the declared type and the allow-list.
type MediaTypeError struct {
	Declared string
	Allowed  []string
}

func (e *MediaTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedMediaType.Error(), e.Declared)
}

func (e *MediaTypeError) Unwrap() error { return ErrUnsupportedMediaType }

// NewMediaTypeError creates an unsupported media type error.
func NewMediaTypeError(declared string, allowed []string) error {
	return &MediaTypeError{Declared: declared, Allowed: allowed}
}

// FileTooLargeError wraps ErrFileTooLarge with the configured ceiling.
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds %d", ErrFileTooLarge.Error(), e.Size, e.Limit)
}

func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// NewFileTooLarge creates a file size ceiling error.
func NewFileTooLarge(size, limit int64) error {
	return &FileTooLargeError{Size: size, Limit: limit}
}
