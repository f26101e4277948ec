// Package decompose provides goal decomposition for the orchestrator.
// The semantic content of decomposition comes from an external language
// model; this package owns the prompt and the response parsing only.
package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShayCichocki/scaffold/internal/llm"
)

// Subtask is one decomposed unit of work as produced by the decomposer.
// The orchestrator assigns IDs and turns these into tasks.
type Subtask struct {
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"`
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
}

// Decomposer breaks a high-level goal into subtasks.
type Decomposer interface {
	Decompose(ctx context.Context, goal string, goalContext map[string]any) ([]Subtask, error)
}

// LLMDecomposer uses a language model to decompose goals.
type LLMDecomposer struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewLLM creates a language-model-backed decomposer.
func NewLLM(gen llm.Generator, logger *slog.Logger) *LLMDecomposer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMDecomposer{gen: gen, logger: logger}
}

// Decompose prompts the model and parses the response into subtasks.
func (d *LLMDecomposer) Decompose(ctx context.Context, goal string, goalContext map[string]any) ([]Subtask, error) {
	prompt := buildDecompositionPrompt(goal, goalContext)

	response, err := d.gen.Generate(ctx, decompositionSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate decomposition: %w", err)
	}

	subtasks, err := ParseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("parse decomposition response: %w", err)
	}

	d.logger.Debug("decomposed goal", "subtasks", len(subtasks))
	return subtasks, nil
}

// ParseResponse extracts the JSON subtask array from a model response,
// tolerating surrounding prose and markdown fences.
func ParseResponse(response string) ([]Subtask, error) {
	payload := extractJSONArray(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var subtasks []Subtask
	if err := json.Unmarshal([]byte(payload), &subtasks); err != nil {
		return nil, fmt.Errorf("unmarshal subtasks: %w", err)
	}

	for i, st := range subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return nil, fmt.Errorf("subtask %d has no title", i)
		}
	}
	if len(subtasks) == 0 {
		return nil, fmt.Errorf("decomposition produced no subtasks")
	}
	return subtasks, nil
}

// extractJSONArray returns the outermost bracketed array in the text.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
