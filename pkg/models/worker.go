package models

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

const (
	// WorkerStatusAvailable indicates the worker is registered and ready for work.
	WorkerStatusAvailable WorkerStatus = "available"
	// WorkerStatusAssigned indicates the worker has tasks allocated to it.
	WorkerStatusAssigned WorkerStatus = "assigned"
	// WorkerStatusIdle indicates the worker finished its allocated tasks.
	WorkerStatusIdle WorkerStatus = "idle"
)

// Valid returns true if the status is a known value.
func (s WorkerStatus) Valid() bool {
	switch s {
	case WorkerStatusAvailable, WorkerStatusAssigned, WorkerStatusIdle:
		return true
	default:
		return false
	}
}

// Worker describes a capability-bearing actor that can execute dispatched tasks.
// The descriptor lives in the worker registry for the lifetime of the process,
// independent of any single execution.
type Worker struct {
	// ID is the unique identifier for this worker.
	ID string `json:"id"`
	// Name is the human-readable name.
	Name string `json:"name"`
	// Description explains what the worker is good at.
	Description string `json:"description,omitempty"`
	// Capabilities lists what kinds of tasks this worker can handle.
	Capabilities []string `json:"capabilities"`
	// Status is the current state of the worker.
	Status WorkerStatus `json:"status"`
}

// HasCapabilities returns true if the worker's capability set is a
// superset of the required capabilities.
func (w *Worker) HasCapabilities(required []string) bool {
	for _, req := range required {
		found := false
		for _, cap := range w.Capabilities {
			if cap == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
