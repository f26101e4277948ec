package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/scaffold/internal/config"
	"github.com/ShayCichocki/scaffold/internal/decompose"
	"github.com/ShayCichocki/scaffold/internal/llm"
	"github.com/ShayCichocki/scaffold/internal/orchestrator"
	"github.com/ShayCichocki/scaffold/internal/plan"
	"github.com/ShayCichocki/scaffold/internal/state"
	"github.com/ShayCichocki/scaffold/internal/worker"
)

// loadConfig resolves the configuration from --config or discovery.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildGenerator creates the language model client the pipeline and
// workers share.
func buildGenerator(cfg *config.Config) (llm.Generator, error) {
	if cfg.Anthropic.UseMock {
		return llm.MockGenerator{}, nil
	}
	return llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.AWS.UseBedrock,
		AWSRegion:     cfg.AWS.Region,
		AWSProfile:    cfg.AWS.Profile,
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
	})
}

// loadRoster returns the configured worker definitions, falling back to
// the built-in roster when no file is configured.
func loadRoster(cfg *config.Config) ([]worker.Definition, error) {
	if cfg.Workers.RosterPath == "" {
		return worker.DefaultDefinitions(), nil
	}
	defs, err := worker.LoadRoster(cfg.Workers.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load worker roster: %w", err)
	}
	return defs, nil
}

// buildOrchestrator wires the generator, journal, and workers into a
// ready orchestrator. The generator is returned so callers can create
// more workers (roster hot reload); the cleanup closes the journal.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*orchestrator.Orchestrator, llm.Generator, func(), error) {
	gen, err := buildGenerator(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithDispatchTimeout(cfg.Orchestrator.DispatchTimeout),
	}

	cleanup := func() {}
	if cfg.Journal.Enabled {
		path := cfg.Journal.Path
		if path == "" {
			path = state.DefaultDBPath()
		}
		db, err := state.Open(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open journal: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("migrate journal: %w", err)
		}
		opts = append(opts, orchestrator.WithJournal(db))
		cleanup = func() { db.Close() }
	}

	orch := orchestrator.New(
		decompose.NewLLM(gen, logger),
		plan.NewLLM(gen, logger),
		opts...,
	)

	defs, err := loadRoster(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	for _, def := range defs {
		orch.RegisterWorker(worker.NewLLM(def, gen))
	}

	return orch, gen, cleanup, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return logger
}
