package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	domupload "github.com/kailas-cloud/prodsnap/internal/domain/upload"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
	"github.com/kailas-cloud/prodsnap/internal/metrics"
)

// sniffLen is how many leading bytes are kept for content detection.
const sniffLen = 3072

// Service accepts image uploads. Payloads are measured and discarded.
type Service struct {
	policy domupload.Policy
	now    func() time.Time
}

// New creates an upload service.
func New(policy domupload.Policy) *Service {
	return &Service{policy: policy, now: time.Now}
}

// Policy returns the active upload policy.
func (s *Service) Policy() domupload.Policy { return s.policy }

// Accept validates the declared content type, then reads at most one byte past the ceiling to size the payload.
// The sniffed type is reported but never used to reject.
func (s *Service) Accept(ctx context.Context, filename, declared string, body io.Reader) (domupload.Receipt, error) {
	if err := s.policy.CheckType(declared); err != nil {
		metrics.ObserveUpload(metrics.UploadUnsupportedType, 0)
		return domupload.Receipt{}, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domupload.Receipt{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	size := int64(n)
	if n == sniffLen {
		rest, err := io.Copy(io.Discard, io.LimitReader(body, s.policy.MaxBytes()-size+1))
		if err != nil {
			return domupload.Receipt{}, fmt.Errorf("read upload: %w", err)
		}
		size += rest
	}

	if err := s.policy.CheckSize(size); err != nil {
		metrics.ObserveUpload(metrics.UploadTooLarge, 0)
		return domupload.Receipt{}, err
	}

	detected := mimetype.Detect(head).String()
	receipt := domupload.NewReceipt(filename, declared, detected, size, s.now())
	metrics.ObserveUpload(metrics.UploadAccepted, size)

	logpkg.FromContext(ctx).Info("upload accepted",
		zap.String("upload_id", receipt.ID()),
		zap.String("filename", filename),
		zap.String("content_type", declared),
		zap.String("detected_type", detected),
		zap.Int64("size", size),
		zap.Time("received_at", receipt.ReceivedAt()),
	)
	return receipt, nil
}
