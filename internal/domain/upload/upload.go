package upload

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/prodsnap/internal/domain"
)

// DefaultMaxBytes is the upload size ceiling (10 MiB).
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// DefaultAllowedTypes is the image MIME allow-list.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Policy decides which uploads are accepted.
type Policy struct {
	maxBytes     int64
	allowedTypes []string
}

// NewPolicy validates and creates a Policy. Zero maxBytes and empty types fall back to defaults.
func NewPolicy(maxBytes int64, allowedTypes []string) (Policy, error) {
	if maxBytes < 0 {
		return Policy{}, fmt.Errorf("max upload bytes must not be negative, got %d", maxBytes)
	}
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	types := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		n := NormalizeType(t)
		if n == "" {
			return Policy{}, fmt.Errorf("empty content type in allow-list")
		}
		types = append(types, n)
	}
	return Policy{maxBytes: maxBytes, allowedTypes: types}, nil
}

// DefaultPolicy returns the 10 MiB jpeg/png/webp policy.
func DefaultPolicy() Policy {
	return Policy{maxBytes: DefaultMaxBytes, allowedTypes: slices.Clone(DefaultAllowedTypes)}
}

// MaxBytes returns the size ceiling; a file of exactly this size is accepted.
func (p Policy) MaxBytes() int64 { return p.maxBytes }

// AllowedTypes returns the MIME allow-list.
func (p Policy) AllowedTypes() []string { return slices.Clone(p.allowedTypes) }

// CheckType rejects declared content types outside the allow-list.
func (p Policy) CheckType(declared string) error {
	if !slices.Contains(p.allowedTypes, NormalizeType(declared)) {
		return domain.NewMediaTypeError(declared, p.AllowedTypes())
	}
	return nil
}

// CheckSize rejects payloads above the ceiling.
func (p Policy) CheckSize(size int64) error {
	if size > p.maxBytes {
		return domain.NewFileTooLarge(size, p.maxBytes)
	}
	return nil
}

// NormalizeType lowercases a media type and drops parameters.
func NormalizeType(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// IDPrefix prefixes upload identifiers.
const IDPrefix = "upload"

// Analysis status values.
const (
	StatusPending = "pending"
)

// PendingEstimate is the advertised analysis latency for accepted uploads.
const PendingEstimate = "2-5 seconds"

// Receipt describes an accepted upload.
type Receipt struct {
	filename     string
	contentType  string
	detectedType string
	size         int64
	id           string
	receivedAt   time.Time
}

// NewReceipt creates a Receipt for an upload accepted at receivedAt.
func NewReceipt(filename, contentType, detectedType string, size int64, receivedAt time.Time) Receipt {
	return Receipt{
		filename:     filename,
		contentType:  contentType,
		detectedType: detectedType,
		size:         size,
		id:           domain.TimestampID(IDPrefix, receivedAt),
		receivedAt:   receivedAt,
	}
}

// Filename returns the client-supplied file name.
func (r Receipt) Filename() string { return r.filename }

// ContentType returns the declared content type.
func (r Receipt) ContentType() string { return r.contentType }

// DetectedType returns the sniffed content type of the payload.
func (r Receipt) DetectedType() string { return r.detectedType }

// Size returns the payload size in bytes.
func (r Receipt) Size() int64 { return r.size }

// ID returns the upload identifier.
func (r Receipt) ID() string { return r.id }

// ReceivedAt returns when the upload was accepted.
func (r Receipt) ReceivedAt() time.Time { return r.receivedAt }

// AnalysisStatus returns the placeholder analysis state.
func (r Receipt) AnalysisStatus() string { return StatusPending }
