package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/analyzer"
	"github.com/kailas-cloud/prodsnap/internal/analyzer/mock"
	"github.com/kailas-cloud/prodsnap/internal/config"
	domupload "github.com/kailas-cloud/prodsnap/internal/domain/upload"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
	"github.com/kailas-cloud/prodsnap/internal/metrics"
	"github.com/kailas-cloud/prodsnap/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/prodsnap/internal/transport/chi"
	healthuc "github.com/kailas-cloud/prodsnap/internal/usecase/health"
	productuc "github.com/kailas-cloud/prodsnap/internal/usecase/product"
	searchuc "github.com/kailas-cloud/prodsnap/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/prodsnap/internal/usecase/upload"
	"github.com/kailas-cloud/prodsnap/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodsnap API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.Duration("search_delay", cfg.Search.Delay()),
	)

	repo, err := loadCatalog(cfg.Catalog, time.Now())
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("products", repo.Count()))

	metrics.RegisterLookupMetrics()
	metrics.CatalogProducts.Set(float64(repo.Count()))

	policy, err := domupload.NewPolicy(cfg.Upload.MaxBytes, cfg.Upload.AllowedTypes)
	if err != nil {
		logger.Fatal("Invalid upload policy", zap.Error(err))
	}

	// Create use case services
	productSvc := productuc.New(repo)
	imageAnalyzer := analyzer.NewInstrumented(mock.New(cfg.Search.Delay()), "mock")
	searchSvc := searchuc.New(repo, imageAnalyzer, searchuc.Config{
		MaxResults: cfg.Search.MaxResults,
		Score:      cfg.Search.SimilarityScore,
	})
	uploadSvc := uploaduc.New(policy)
	healthSvc := healthuc.New(repo)

	server := chiTransport.NewServer(productSvc, searchSvc, uploadSvc, healthSvc,
		chiTransport.DefaultInfo(version.Version))
	router := chiTransport.NewRouter(server, logger, chiTransport.RouterOptions{
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadCatalog reads the configured catalog file, or the embedded seed when no path is set.
func loadCatalog(cfg config.CatalogConfig, loadedAt time.Time) (*catalog.Repo, error) {
	if cfg.Path == "" {
		return catalog.Seed(loadedAt)
	}
	return catalog.LoadFile(cfg.Path, loadedAt)
}
