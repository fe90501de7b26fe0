package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvarga/claimsdesk/internal/bootstrap"
	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/observability/logging"
	"github.com/mvarga/claimsdesk/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeClaimBatch(ctx, func(handlerCtx context.Context, claimID string) error {
		batchCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()

		workerMetrics.StartBatch()
		start := time.Now()
		result, err := app.Batch.ProcessClaim(batchCtx, claimID)
		workerMetrics.FinishBatch("worker", time.Since(start), result, err)
		if err != nil {
			return err
		}

		slog.Info("claim_batch_finished",
			"claim_id", claimID,
			"total", result.Total,
			"processed", result.Processed,
			"failed", result.Total-result.Processed,
		)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
