package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not assigned.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusAssigned indicates the task has been allocated to a worker.
	TaskStatusAssigned TaskStatus = "assigned"
	// TaskStatusInProgress indicates the task has been dispatched and is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusSkipped indicates the task had no capable worker and was not executed.
	TaskStatusSkipped TaskStatus = "skipped"
	// TaskStatusFailed indicates the task was dispatched but the worker reported an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusSkipped, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the task can no longer change state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusSkipped, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Task represents a unit of work produced by goal decomposition.
// A task belongs to exactly one execution and is mutated only through
// status transitions driven by that execution.
type Task struct {
	// ID is the unique identifier, derived from the execution ID and ordinal.
	ID string `json:"id"`
	// ExecutionID is the ID of the execution that owns this task.
	ExecutionID string `json:"execution_id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed information about the task.
	Description string `json:"description,omitempty"`
	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty"`
	// RequiredCapabilities lists the capabilities a worker must have to run this task.
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// TaskOutcome records the result of one task within a plan step.
type TaskOutcome struct {
	// Status is the final state of the task: completed, skipped, or failed.
	Status TaskStatus `json:"status"`
	// Message carries a human-readable note, e.g. the skip reason or error text.
	Message string `json:"message,omitempty"`
	// Output carries the worker's result payload, if any.
	Output map[string]any `json:"output,omitempty"`
}
