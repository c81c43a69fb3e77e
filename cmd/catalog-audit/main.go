// Command catalog-audit loads the configured catalog once, prints the
// ingestion report as JSON and exits non-zero when the catalog could not be
// fetched or read.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/app/api"
	catalogobs "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/application"
	platformobservability "github.com/Apurer/go-sheet-storefront/internal/platform/observability"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

const (
	exitTransport   = 2
	exitUnparseable = 3
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	// The report owns stdout; logs go to stderr.
	instruments, shutdown, err := platformobservability.Init(ctx, "storefront-catalog-audit", platformobservability.WithLogWriter(os.Stderr))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	logger := instruments.Logger
	backends, err := api.OpenBackends(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open backends: %v", err)
	}
	defer backends.Close()

	service := catalogobs.New(
		catalogapp.NewService(backends.Catalog, catalogapp.WithFetchTimeout(cfg.Catalog.FetchTimeout)),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	report, err := service.Load(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		logger.Error("failed to write report", slog.String("error", encErr.Error()))
	}
	switch {
	case errors.Is(err, ingestion.ErrUnparseable):
		logger.Error("catalog unreadable", slog.String("error", err.Error()))
		os.Exit(exitUnparseable)
	case err != nil:
		logger.Error("catalog unreachable", slog.String("error", err.Error()))
		os.Exit(exitTransport)
	}
	logger.Info("catalog audit completed",
		slog.String("source", report.Source),
		slog.Int("rows", report.Rows),
		slog.Int("accepted", report.Accepted),
		slog.Int("issues", len(report.Issues)))
}
