package models

import "time"

// ExecutionStatus represents the lifecycle state of a goal execution.
// Statuses advance strictly forward; an execution never regresses.
type ExecutionStatus string

const (
	// ExecutionStatusInitializing indicates the execution record was just created.
	ExecutionStatusInitializing ExecutionStatus = "initializing"
	// ExecutionStatusDecomposing indicates the goal is being split into subtasks.
	ExecutionStatusDecomposing ExecutionStatus = "decomposing"
	// ExecutionStatusPlanning indicates a plan is being created for the subtasks.
	ExecutionStatusPlanning ExecutionStatus = "planning"
	// ExecutionStatusAllocating indicates tasks are being matched to workers.
	ExecutionStatusAllocating ExecutionStatus = "allocating"
	// ExecutionStatusExecuting indicates plan steps are being dispatched.
	ExecutionStatusExecuting ExecutionStatus = "executing"
	// ExecutionStatusCompleted indicates the execution finished successfully.
	ExecutionStatusCompleted ExecutionStatus = "completed"
	// ExecutionStatusFailed indicates the execution terminated with an error.
	ExecutionStatusFailed ExecutionStatus = "failed"
)

// rank orders the forward progression of statuses. Terminal statuses share
// the highest rank since neither can follow the other.
func (s ExecutionStatus) rank() int {
	switch s {
	case ExecutionStatusInitializing:
		return 0
	case ExecutionStatusDecomposing:
		return 1
	case ExecutionStatusPlanning:
		return 2
	case ExecutionStatusAllocating:
		return 3
	case ExecutionStatusExecuting:
		return 4
	case ExecutionStatusCompleted, ExecutionStatusFailed:
		return 5
	default:
		return -1
	}
}

// Valid returns true if the status is a known value.
func (s ExecutionStatus) Valid() bool {
	return s.rank() >= 0
}

// Terminal returns true if the execution can no longer change state.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed
}

// CanTransition reports whether moving from s to next is a legal transition.
// The happy path advances one rank at a time; failed is reachable from any
// non-terminal state.
func (s ExecutionStatus) CanTransition(next ExecutionStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == ExecutionStatusFailed {
		return true
	}
	if next == ExecutionStatusCompleted {
		return s == ExecutionStatusExecuting
	}
	return next.rank() == s.rank()+1
}

// Result aggregates the per-step, per-task outcomes of a completed execution.
type Result struct {
	// ExecutionID identifies the execution this result belongs to.
	ExecutionID string `json:"execution_id"`
	// StepsCompleted is the number of plan steps that were processed.
	StepsCompleted int `json:"steps_completed"`
	// Results maps step ID to a map of task ID to outcome.
	Results map[string]map[string]TaskOutcome `json:"results"`
}

// Execution is one run of the orchestrator against a single goal.
// The record is created at submission and mutated only by the execution's
// own run loop; errors are append-only and the status advances monotonically.
type Execution struct {
	// ID is the unique identifier for this execution.
	ID string `json:"id"`
	// Goal is the high-level objective submitted by the client.
	Goal string `json:"goal"`
	// Context carries optional client-supplied context for the goal.
	Context map[string]any `json:"context,omitempty"`
	// Status is the current lifecycle state.
	Status ExecutionStatus `json:"status"`
	// StartTime is when the goal was submitted.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the execution reached a terminal state, if it has.
	EndTime *time.Time `json:"end_time,omitempty"`
	// Subtasks lists the IDs of tasks produced by decomposition.
	Subtasks []string `json:"subtasks"`
	// PlanID is the ID of the plan created for this execution, if any.
	PlanID string `json:"plan_id,omitempty"`
	// Result holds the aggregated outcome once the execution completes.
	Result *Result `json:"result,omitempty"`
	// Errors collects error messages recorded during the execution.
	Errors []string `json:"errors"`
}

// Clone returns a deep copy of the execution so callers can hand out
// records without exposing internal state to mutation.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}
	out := *e
	if e.Context != nil {
		out.Context = make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			out.Context[k] = v
		}
	}
	if e.EndTime != nil {
		t := *e.EndTime
		out.EndTime = &t
	}
	out.Subtasks = append([]string(nil), e.Subtasks...)
	out.Errors = append([]string(nil), e.Errors...)
	if e.Result != nil {
		res := Result{
			ExecutionID:    e.Result.ExecutionID,
			StepsCompleted: e.Result.StepsCompleted,
			Results:        make(map[string]map[string]TaskOutcome, len(e.Result.Results)),
		}
		for step, tasks := range e.Result.Results {
			inner := make(map[string]TaskOutcome, len(tasks))
			for id, outcome := range tasks {
				inner[id] = outcome
			}
			res.Results[step] = inner
		}
		out.Result = &res
	}
	return &out
}
