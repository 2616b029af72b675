package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upload outcomes.
const (
	UploadAccepted        = "accepted"
	UploadUnsupportedType = "unsupported_type"
	UploadTooLarge        = "too_large"
)

// Lookup Prometheus metrics.
var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by outcome",
		},
		[]string{"result"},
	)

	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of accepted uploads",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "image_searches_total",
			Help:      "Image searches by status",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "image_search_duration_seconds",
			Help:      "Image search duration including analysis",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 1.5, 2, 5},
		},
	)

	SearchMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "image_search_matches",
			Help:      "Catalog matches per search before truncation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "image_analyses_total",
			Help:      "Image analyses by analyzer and status",
		},
		[]string{"analyzer", "status"},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "image_analysis_duration_seconds",
			Help:      "Image analysis latency",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 5},
		},
		[]string{"analyzer"},
	)

	CatalogProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_products",
			Help:      "Products loaded into the catalog",
		},
	)
)

var registerLookupOnce sync.Once

// RegisterLookupMetrics registers lookup metrics on the default registry. Later calls are no-ops.
func RegisterLookupMetrics() {
	registerLookupOnce.Do(func() {
		prometheus.MustRegister(UploadsTotal)
		prometheus.MustRegister(UploadBytes)
		prometheus.MustRegister(SearchesTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchMatches)
		prometheus.MustRegister(AnalysesTotal)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(CatalogProducts)
	})
}

// ObserveUpload records an upload outcome; size is recorded only for accepted uploads.
func ObserveUpload(result string, size int64) {
	UploadsTotal.WithLabelValues(result).Inc()
	if result == UploadAccepted {
		UploadBytes.Observe(float64(size))
	}
}

// ObserveSearch records a finished search.
func ObserveSearch(err error, totalMatches int, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(elapsed.Seconds())
	if err == nil {
		SearchMatches.Observe(float64(totalMatches))
	}
}
