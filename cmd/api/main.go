package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mvarga/claimsdesk/internal/adapters/http"
	"github.com/mvarga/claimsdesk/internal/bootstrap"
	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/observability/logging"
	"github.com/mvarga/claimsdesk/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(cfg, httpadapter.Deps{
		Claims:    app.Claims,
		Ingest:    app.Ingest,
		Pipeline:  app.Pipeline,
		Reports:   app.Reports,
		Workflow:  app.Workflow,
		Knowledge: app.Knowledge,
		Queue:     app.Queue,
		Documents: app.Documents,
		ReportLog: app.ReportLog,
		Roles:     app.Roles,
		Exporter:  app.Exporter,
		Metrics:   serverMetrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", serverMetrics.Handler())
	mux.Handle("/", serverMetrics.Middleware("api", router.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
