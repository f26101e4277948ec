package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Definition describes one worker declaratively, loadable from the
// roster YAML file.
type Definition struct {
	// ID is the unique identifier for the worker.
	ID string `yaml:"id"`
	// Name is the human-readable name.
	Name string `yaml:"name"`
	// Description explains what the worker is good at.
	Description string `yaml:"description"`
	// Capabilities lists what kinds of tasks the worker can handle.
	Capabilities []string `yaml:"capabilities"`
	// SystemPrompt configures the language model for this worker.
	SystemPrompt string `yaml:"system_prompt"`
}

// Validate checks the definition is complete enough to register.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("worker definition missing id")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("worker %s: missing name", d.ID)
	}
	if len(d.Capabilities) == 0 {
		return fmt.Errorf("worker %s: no capabilities", d.ID)
	}
	return nil
}

// rosterFile is the YAML document shape.
type rosterFile struct {
	Workers []Definition `yaml:"workers"`
}

// LoadRoster reads worker definitions from a YAML file.
func LoadRoster(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(file.Workers) == 0 {
		return nil, fmt.Errorf("roster %s defines no workers", path)
	}
	for _, def := range file.Workers {
		if err := def.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Workers, nil
}

// WatchRoster reloads the roster whenever the file changes and invokes
// onChange with the fresh definitions. It blocks until ctx is cancelled.
// Invalid intermediate states (partial writes, parse errors) are logged
// and skipped; the previous roster stays active.
func WatchRoster(ctx context.Context, path string, logger *slog.Logger, onChange func([]Definition)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file, which would
	// otherwise drop the watch on the inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch roster directory: %w", err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			defs, err := LoadRoster(path)
			if err != nil {
				logger.Warn("roster reload skipped", "path", path, "error", err)
				continue
			}
			logger.Info("roster reloaded", "path", path, "workers", len(defs))
			onChange(defs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("roster watcher error", "error", err)
		}
	}
}

// DefaultDefinitions returns the built-in research, analysis, and
// synthesis workers used when no roster file is configured.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:           "research-worker-1",
			Name:         "Research Specialist",
			Description:  "Gathers and organizes information from various sources.",
			Capabilities: []string{"research", "information_gathering", "summarization"},
			SystemPrompt: `You are a highly skilled research specialist. Given a research task, gather the relevant information, check it for accuracy, and summarize the findings clearly and concisely with sources.`,
		},
		{
			ID:           "analysis-worker-1",
			Name:         "Analysis Expert",
			Description:  "Analyzes data and identifies patterns and insights.",
			Capabilities: []string{"analysis", "data_analysis", "critical_thinking", "pattern_recognition", "insight_generation"},
			SystemPrompt: `You are an expert analyst. Given an analysis task, examine the material methodically, identify meaningful patterns and trends, and explain the insights they support.`,
		},
		{
			ID:           "synthesis-worker-1",
			Name:         "Synthesis Specialist",
			Description:  "Synthesizes information and generates coherent outputs.",
			Capabilities: []string{"synthesis", "information_synthesis", "content_generation", "report_writing"},
			SystemPrompt: `You are a synthesis specialist. Given inputs from research and analysis, integrate them into a single coherent output that addresses the original goal directly.`,
		},
	}
}
