package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scaffold/internal/llm"
	"github.com/ShayCichocki/scaffold/internal/orchestrator"
	"github.com/ShayCichocki/scaffold/internal/server"
	"github.com/ShayCichocki/scaffold/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the orchestrator HTTP server",
	Long: `Start the orchestrator and serve its API over HTTP.

Endpoints:
  POST /api/goals           submit a goal for processing
  GET  /api/executions      list all executions
  GET  /api/executions/:id  poll one execution
  GET  /api/workers         list registered workers
  GET  /healthz             liveness check`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	orch, gen, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Workers.RosterPath != "" && cfg.Workers.Watch {
		go watchRoster(ctx, cfg.Workers.RosterPath, orch, gen, logger)
	}

	srv := server.New(orch, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	orch.Close()
	return nil
}

// watchRoster hot-reloads worker definitions while the server runs.
// Reloaded definitions replace workers by ID; IDs removed from the file
// keep their last registration until restart.
func watchRoster(ctx context.Context, path string, orch *orchestrator.Orchestrator, gen llm.Generator, logger *slog.Logger) {
	err := worker.WatchRoster(ctx, path, logger, func(defs []worker.Definition) {
		for _, def := range defs {
			orch.RegisterWorker(worker.NewLLM(def, gen))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("roster watch stopped", "error", err)
	}
}
