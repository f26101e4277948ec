// Package monitor tracks task and worker status on top of the shared
// context. Only the latest status per task or worker is retained.
package monitor

import (
	"time"

	"github.com/ShayCichocki/scaffold/internal/shared"
	"github.com/ShayCichocki/scaffold/pkg/models"
)

const (
	taskKeyPrefix   = "task:"
	workerKeyPrefix = "worker:"
)

// Monitor records timestamped status transitions for tasks and workers.
// All writes go through the shared context, so every component observing
// that context sees the same latest-status records.
type Monitor struct {
	ctx *shared.Context
	// now is swappable for tests.
	now func() time.Time
}

// New creates a Monitor backed by the given shared context.
func New(ctx *shared.Context) *Monitor {
	return &Monitor{ctx: ctx, now: time.Now}
}

// RegisterTask records the initial status for a task.
func (m *Monitor) RegisterTask(task *models.Task) {
	m.ctx.Set(taskKeyPrefix+task.ID, map[string]any{
		"status":     models.TaskStatusPending,
		"title":      task.Title,
		"updated_at": m.now(),
	})
}

// UpdateTaskStatus merges fields into a task's status record and stamps
// the update time.
func (m *Monitor) UpdateTaskStatus(taskID string, fields map[string]any) {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["updated_at"] = m.now()
	m.ctx.Update(taskKeyPrefix+taskID, merged)
}

// TaskStatus returns the latest status record for a task.
func (m *Monitor) TaskStatus(taskID string) (map[string]any, bool) {
	v, ok := m.ctx.Get(taskKeyPrefix + taskID)
	if !ok {
		return nil, false
	}
	record, ok := v.(map[string]any)
	return record, ok
}

// RegisterWorker records the initial status for a worker.
func (m *Monitor) RegisterWorker(w *models.Worker) {
	m.ctx.Set(workerKeyPrefix+w.ID, map[string]any{
		"status":     models.WorkerStatusAvailable,
		"name":       w.Name,
		"updated_at": m.now(),
	})
}

// UpdateWorkerStatus merges fields into a worker's status record and
// stamps the update time.
func (m *Monitor) UpdateWorkerStatus(workerID string, fields map[string]any) {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["updated_at"] = m.now()
	m.ctx.Update(workerKeyPrefix+workerID, merged)
}

// WorkerStatus returns the latest status record for a worker.
func (m *Monitor) WorkerStatus(workerID string) (map[string]any, bool) {
	v, ok := m.ctx.Get(workerKeyPrefix + workerID)
	if !ok {
		return nil, false
	}
	record, ok := v.(map[string]any)
	return record, ok
}
