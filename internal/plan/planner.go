// Package plan provides execution planning for the orchestrator. Like
// decomposition, the ordering decisions come from an external language
// model; this package owns the prompt and the response parsing.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShayCichocki/scaffold/internal/llm"
	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Planner orders tasks into executable steps.
type Planner interface {
	CreatePlan(ctx context.Context, tasks []*models.Task, goalContext map[string]any) (*models.Plan, error)
}

// LLMPlanner uses a language model to sequence tasks into steps.
type LLMPlanner struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewLLM creates a language-model-backed planner.
func NewLLM(gen llm.Generator, logger *slog.Logger) *LLMPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMPlanner{gen: gen, logger: logger}
}

// CreatePlan prompts the model and parses the response into a plan.
// The plan's ID is assigned by the caller.
func (p *LLMPlanner) CreatePlan(ctx context.Context, tasks []*models.Task, goalContext map[string]any) (*models.Plan, error) {
	prompt := buildPlanningPrompt(tasks, goalContext)

	response, err := p.gen.Generate(ctx, planningSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	plan, err := ParseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("parse planning response: %w", err)
	}

	p.logger.Debug("created plan", "steps", len(plan.Steps))
	return plan, nil
}

// ParseResponse extracts the JSON plan object from a model response,
// tolerating surrounding prose and markdown fences.
func ParseResponse(response string) (*models.Plan, error) {
	payload := extractJSONObject(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var raw struct {
		Steps []models.Step `json:"steps"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	for i, step := range raw.Steps {
		if len(step.TaskIDs) == 0 {
			return nil, fmt.Errorf("plan step %d references no tasks", i)
		}
	}

	return &models.Plan{Steps: raw.Steps}, nil
}

// extractJSONObject returns the outermost braced object in the text.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
