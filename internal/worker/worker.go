// Package worker defines the worker contract and the config-driven LLM
// worker. A worker is one interface plus data: specialization comes from
// its capability set and system prompt, not from a type hierarchy.
package worker

import (
	"context"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Request is the payload delivered to a worker for one task.
type Request struct {
	// TaskID identifies the task being executed.
	TaskID string
	// ExecutionID identifies the owning execution.
	ExecutionID string
	// Task carries the full task detail.
	Task *models.Task
	// Context carries the execution's goal context.
	Context map[string]any
}

// Worker executes dispatched tasks. Implementations must be safe for
// concurrent Process calls: allocations do not track capacity, so one
// worker may serve several executions at once.
type Worker interface {
	// Descriptor returns the worker's registration metadata.
	Descriptor() *models.Worker
	// Process executes one task and returns its output payload.
	Process(ctx context.Context, req Request) (map[string]any, error)
}
