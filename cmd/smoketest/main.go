// Command smoketest checks a running prodsnap API end to end.
//
//	go run ./cmd/smoketest -base-url http://localhost:8000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
	"github.com/kailas-cloud/prodsnap/internal/smoke"
)

func main() {
	os.Exit(run())
}

func run() int {
	baseURL := flag.String("base-url", smoke.DefaultBaseURL, "prodsnap API base URL")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline for all checks")
	verbose := flag.Bool("v", false, "log every request")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger("local", level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	runner := smoke.New(*baseURL, smoke.WithOutput(os.Stdout), smoke.WithLogger(logger))
	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("smoke test aborted", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Start the API first: go run ./cmd/prodsnap")
		return 1
	}
	if report.Failed() > 0 {
		return 1
	}
	return 0
}
