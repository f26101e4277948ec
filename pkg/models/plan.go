package models

// Step is one executable phase of a plan. Steps run in order; tasks within
// a step may run concurrently when Parallel is set.
type Step struct {
	// Name is the optional human-readable label for the step.
	Name string `json:"name,omitempty"`
	// TaskIDs lists the tasks executed in this step.
	TaskIDs []string `json:"tasks"`
	// Parallel indicates the step's tasks may be dispatched concurrently.
	Parallel bool `json:"parallel"`
	// Conditions describes preconditions for the step, as produced by the planner.
	Conditions string `json:"conditions,omitempty"`
	// ExpectedOutcomes describes success criteria, as produced by the planner.
	ExpectedOutcomes string `json:"expected_outcomes,omitempty"`
}

// Plan is an ordered grouping of tasks into executable steps.
// It is created once per execution by the planner and read-only thereafter.
type Plan struct {
	// ID is the unique identifier, derived from the execution ID.
	ID string `json:"id"`
	// Steps is the ordered list of execution phases.
	Steps []Step `json:"steps"`
}
