// Package analyzer holds image analyzers and the decorators shared by them.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
	"github.com/kailas-cloud/prodsnap/internal/metrics"
)

// Analyzer classifies an uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, img analysis.Image) (analysis.Result, error)
}

// Instrumented wraps an Analyzer with latency metrics and logging.
type Instrumented struct {
	inner Analyzer
	name  string
}

// NewInstrumented wraps inner; name labels metrics and log lines.
func NewInstrumented(inner Analyzer, name string) *Instrumented {
	return &Instrumented{inner: inner, name: name}
}

// Analyze delegates to the inner analyzer and records the outcome.
func (a *Instrumented) Analyze(ctx context.Context, img analysis.Image) (analysis.Result, error) {
	log := logpkg.FromContext(ctx)
	start := time.Now()

	res, err := a.inner.Analyze(ctx, img)

	duration := time.Since(start)
	metrics.AnalysisDuration.WithLabelValues(a.name).Observe(duration.Seconds())

	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(a.name, "error").Inc()
		log.Warn("Image analysis failed",
			zap.String("analyzer", a.name),
			zap.String("filename", img.Filename),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return analysis.Result{}, fmt.Errorf("%s analyzer: %w", a.name, err)
	}

	metrics.AnalysesTotal.WithLabelValues(a.name, "ok").Inc()
	log.Debug("Image analysis completed",
		zap.String("analyzer", a.name),
		zap.String("filename", img.Filename),
		zap.Duration("duration", duration),
		zap.String("primary_category", res.PrimaryCategory()),
		zap.Float64("confidence", res.Confidence()),
	)
	return res, nil
}
