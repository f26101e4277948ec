package orchestrator

import (
	"log/slog"
	"time"
)

// Option configures the orchestrator at construction time.
type Option func(*Orchestrator)

// WithLogger sets the structured logger used by the orchestrator and the
// components it constructs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDispatchTimeout bounds how long a dispatched task waits for its
// worker response before being marked failed.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.dispatchTimeout = d
		}
	}
}

// WithJournal persists terminal execution records to the given journal.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) {
		o.journal = j
	}
}
