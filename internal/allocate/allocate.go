// Package allocate matches tasks to capability-matched workers.
package allocate

import (
	"log/slog"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Allocator assigns each task to the first worker whose capability set is
// a superset of the task's requirements. It is a one-shot, non-optimizing
// matcher: no load balancing, no capacity limits, no re-allocation.
type Allocator struct {
	logger *slog.Logger
}

// New creates an Allocator. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate maps task IDs to worker IDs. Workers are considered in the
// order given, so the result is a pure function of its inputs. Tasks with
// no capable worker are omitted from the result; the gap surfaces later
// as a skipped task when the orchestrator attempts dispatch.
func (a *Allocator) Allocate(tasks []*models.Task, workers []*models.Worker) map[string]string {
	allocations := make(map[string]string, len(tasks))

	for _, task := range tasks {
		assigned := false
		for _, w := range workers {
			if w.HasCapabilities(task.RequiredCapabilities) {
				allocations[task.ID] = w.ID
				assigned = true
				break
			}
		}
		if !assigned {
			a.logger.Warn("no capable worker for task",
				"task_id", task.ID,
				"required_capabilities", task.RequiredCapabilities)
		}
	}
	return allocations
}
