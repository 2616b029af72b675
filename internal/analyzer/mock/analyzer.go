// Package mock provides a canned image analyzer that stands in for a vision model.
package mock

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
)

// DefaultDelay simulates model latency.
const DefaultDelay = time.Second

// Canned classification output.
var (
	DetectedObjects = []string{"杯子", "不锈钢", "保温"}
	PrimaryCategory = "厨房用品"
	Colors          = []string{"银色"}
	Materials       = []string{"金属"}
	Confidence      = 0.85
)

// Analyzer returns the same analysis for every image after a fixed delay.
type Analyzer struct {
	delay time.Duration
	after func(time.Duration) <-chan time.Time
}

// New creates a mock analyzer. A zero delay returns immediately.
func New(delay time.Duration) *Analyzer {
	if delay < 0 {
		delay = 0
	}
	return &Analyzer{delay: delay, after: time.After}
}

// Delay returns the simulated processing latency.
func (a *Analyzer) Delay() time.Duration { return a.delay }

// Analyze waits for the configured delay (or ctx cancellation) and returns the canned result.
func (a *Analyzer) Analyze(ctx context.Context, img analysis.Image) (analysis.Result, error) {
	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return analysis.Result{}, fmt.Errorf("analyze %q: %w", img.Filename, ctx.Err())
		case <-a.after(a.delay):
		}
	}

	logpkg.FromContext(ctx).Debug("mock analysis",
		zap.String("filename", img.Filename),
		zap.String("content_type", img.ContentType),
		zap.Int64("size", img.Size),
	)

	res, err := analysis.New(DetectedObjects, PrimaryCategory, Colors, Materials, Confidence, nil)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("build canned analysis: %w", err)
	}
	return res, nil
}
