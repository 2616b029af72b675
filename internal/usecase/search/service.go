package search

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/analysis"
	"github.com/kailas-cloud/prodsnap/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
	"github.com/kailas-cloud/prodsnap/internal/metrics"
)

// IDPrefix prefixes search identifiers.
const IDPrefix = "search"

// Matching defaults.
const (
	DefaultMaxResults = 5
	DefaultScore      = 0.7
)

// DefaultReasons is attached to every category match.
var DefaultReasons = []string{"类别匹配", "特征相似"}

// Config tunes matching.
type Config struct {
	MaxResults int
	Score      float64
	Reasons    []string
}

// DefaultConfig returns the standard matching settings.
func DefaultConfig() Config {
	return Config{
		MaxResults: DefaultMaxResults,
		Score:      DefaultScore,
		Reasons:    slices.Clone(DefaultReasons),
	}
}

// Outcome is a finished image search.
type Outcome struct {
	ID             string
	Analysis       analysis.Result
	Matches        []result.Result
	TotalMatches   int
	ProcessingTime time.Duration
}

// Service runs image search: analyze, then match by primary category.
type Service struct {
	catalog  CatalogReader
	analyzer Analyzer
	cfg      Config
	now      func() time.Time
}

// New creates a search service. Zero config fields fall back to defaults.
func New(catalog CatalogReader, analyzer Analyzer, cfg Config) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Score <= 0 {
		cfg.Score = DefaultScore
	}
	if len(cfg.Reasons) == 0 {
		cfg.Reasons = slices.Clone(DefaultReasons)
	}
	return &Service{catalog: catalog, analyzer: analyzer, cfg: cfg, now: time.Now}
}

// Search analyzes img and returns the catalog products sharing its primary category.
// The image content does not influence matching beyond the analysis result.
func (s *Service) Search(ctx context.Context, img analysis.Image) (out Outcome, err error) {
	start := s.now()
	defer func() {
		metrics.ObserveSearch(err, out.TotalMatches, s.now().Sub(start))
	}()

	id := domain.TimestampID(IDPrefix, start)
	ctx = logpkg.With(ctx, zap.String("search_id", id))

	res, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		return Outcome{}, fmt.Errorf("analyze image: %w", err)
	}

	matches, err := s.match(ctx, res.PrimaryCategory())
	if err != nil {
		return Outcome{}, err
	}

	total := len(matches)
	return Outcome{
		ID:             id,
		Analysis:       res,
		Matches:        rank(matches, s.cfg.MaxResults),
		TotalMatches:   total,
		ProcessingTime: s.now().Sub(start),
	}, nil
}

func (s *Service) match(ctx context.Context, category string) ([]result.Result, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	var matches []result.Result
	for _, p := range products {
		if p.Category() != category {
			continue
		}
		r, err := result.New(p, s.cfg.Score, s.cfg.Reasons, nil)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", p.ID(), err)
		}
		matches = append(matches, r)
	}
	return matches, nil
}
