package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-sheet-storefront/internal/app/api"
	orderactivities "github.com/Apurer/go-sheet-storefront/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-sheet-storefront/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/go-sheet-storefront/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, err := api.OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backends.Close()
	orderActivities := orderactivities.NewActivities(backends.OrderWriter)

	temporalClient, err := api.DialTemporal(cfg.Temporal, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderSubmissionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderSubmissionWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderSubmissionWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.WriteOrder, activity.RegisterOptions{Name: orderactivities.WriteOrderActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", orderworkflows.OrderSubmissionTaskQueue),
		slog.String("namespace", cfg.Temporal.Namespace),
		slog.String("orders.backend", cfg.Orders.Backend))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
