package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/scaffold/internal/llm"
	"github.com/ShayCichocki/scaffold/pkg/models"
)

// LLMWorker executes tasks by prompting a language model with the
// definition's system prompt.
type LLMWorker struct {
	def Definition
	gen llm.Generator
}

// NewLLM creates a worker from its definition.
func NewLLM(def Definition, gen llm.Generator) *LLMWorker {
	return &LLMWorker{def: def, gen: gen}
}

// Descriptor returns the worker's registration metadata.
func (w *LLMWorker) Descriptor() *models.Worker {
	return &models.Worker{
		ID:           w.def.ID,
		Name:         w.def.Name,
		Description:  w.def.Description,
		Capabilities: append([]string(nil), w.def.Capabilities...),
		Status:       models.WorkerStatusAvailable,
	}
}

// Process prompts the model with the task and returns its output.
func (w *LLMWorker) Process(ctx context.Context, req Request) (map[string]any, error) {
	response, err := w.gen.Generate(ctx, w.def.SystemPrompt, buildTaskPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", w.def.ID, err)
	}
	return map[string]any{
		"task_id": req.TaskID,
		"result":  response,
	}, nil
}

// buildTaskPrompt renders the task and goal context for the model.
func buildTaskPrompt(req Request) string {
	var b strings.Builder
	if req.Task != nil {
		fmt.Fprintf(&b, "Task: %s\n", req.Task.Title)
		if req.Task.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", req.Task.Description)
		}
	} else {
		fmt.Fprintf(&b, "Task: %s\n", req.TaskID)
	}

	if len(req.Context) > 0 {
		b.WriteString("\nContext:\n")
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, req.Context[k])
		}
	}

	b.WriteString("\nComplete this task and report your results.")
	return b.String()
}
