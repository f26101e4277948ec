package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/scaffold/internal/decompose"
	"github.com/ShayCichocki/scaffold/pkg/models"
)

// run drives one execution through its state machine. Pipeline errors
// (decomposition, planning) fail the execution; individual task failures
// are recorded in the result and do not.
func (o *Orchestrator) run(execID string) {
	defer func() {
		if r := recover(); r != nil {
			o.failExecution(execID, fmt.Errorf("execution panicked: %v", r))
		}
	}()

	ctx := o.rootCtx
	exec, ok := o.Execution(execID)
	if !ok {
		return
	}

	o.setStatus(execID, models.ExecutionStatusDecomposing)
	subtasks, err := o.decomposer.Decompose(ctx, exec.Goal, exec.Context)
	if err != nil {
		o.failExecution(execID, fmt.Errorf("decomposition failed: %w", err))
		return
	}
	tasks := o.createTasks(execID, subtasks)

	o.setStatus(execID, models.ExecutionStatusPlanning)
	p, err := o.planner.CreatePlan(ctx, tasks, exec.Context)
	if err != nil {
		o.failExecution(execID, fmt.Errorf("planning failed: %w", err))
		return
	}
	p.ID = execID + "-plan"
	o.mu.Lock()
	o.plans[p.ID] = p
	o.executions[execID].PlanID = p.ID
	o.mu.Unlock()

	o.setStatus(execID, models.ExecutionStatusAllocating)
	allocations := o.allocator.Allocate(tasks, o.workers.Workers())
	o.applyAllocations(execID, allocations)

	o.setStatus(execID, models.ExecutionStatusExecuting)
	result, err := o.executePlan(ctx, execID, p)
	o.releaseWorkers(allocations)
	if err != nil {
		o.failExecution(execID, err)
		return
	}
	o.completeExecution(execID, result)
}

// setStatus advances the execution's status. Transitions inside run are
// always sequential, so an illegal transition indicates a bug and is
// logged rather than applied.
func (o *Orchestrator) setStatus(execID string, next models.ExecutionStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	exec, ok := o.executions[execID]
	if !ok {
		return
	}
	if !exec.Status.CanTransition(next) {
		o.logger.Error("illegal status transition",
			"execution_id", execID, "from", exec.Status, "to", next)
		return
	}
	exec.Status = next
	o.logger.Info("execution status changed", "execution_id", execID, "status", next)
}

// createTasks materializes decomposed subtasks as task records with
// deterministic IDs derived from the execution ID.
func (o *Orchestrator) createTasks(execID string, subtasks []decompose.Subtask) []*models.Task {
	tasks := make([]*models.Task, 0, len(subtasks))

	o.mu.Lock()
	exec := o.executions[execID]
	for i, st := range subtasks {
		task := &models.Task{
			ID:                   fmt.Sprintf("%s-task-%d", execID, i),
			ExecutionID:          execID,
			Title:                st.Title,
			Description:          st.Description,
			DependsOn:            append([]string(nil), st.Dependencies...),
			RequiredCapabilities: append([]string(nil), st.RequiredCapabilities...),
			Status:               models.TaskStatusPending,
			CreatedAt:            time.Now(),
		}
		o.tasks[task.ID] = task
		exec.Subtasks = append(exec.Subtasks, task.ID)
		tasks = append(tasks, task)
	}
	o.mu.Unlock()

	for _, task := range tasks {
		o.monitor.RegisterTask(task)
	}
	return tasks
}

// applyAllocations records the task-to-worker assignments and marks both
// sides assigned.
func (o *Orchestrator) applyAllocations(execID string, allocations map[string]string) {
	o.mu.Lock()
	o.allocations[execID] = allocations
	for taskID := range allocations {
		if task, ok := o.tasks[taskID]; ok {
			task.Status = models.TaskStatusAssigned
		}
	}
	o.mu.Unlock()

	for taskID, workerID := range allocations {
		o.monitor.UpdateTaskStatus(taskID, map[string]any{
			"status":    models.TaskStatusAssigned,
			"worker_id": workerID,
		})
		o.workers.SetStatus(workerID, models.WorkerStatusAssigned)
		o.monitor.UpdateWorkerStatus(workerID, map[string]any{
			"status": models.WorkerStatusAssigned,
		})
	}
}

// executePlan runs each plan step in order and aggregates the outcomes.
// Steps are sequential; tasks within a step marked parallel run
// concurrently. Cancellation between steps aborts the execution.
func (o *Orchestrator) executePlan(ctx context.Context, execID string, p *models.Plan) (*models.Result, error) {
	results := make(map[string]map[string]models.TaskOutcome, len(p.Steps))

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("execution cancelled after %d of %d steps: %w", i, len(p.Steps), err)
		}
		stepID := fmt.Sprintf("%s-step-%d", execID, i)
		results[stepID] = o.runStep(ctx, execID, step)
		o.logger.Info("plan step finished",
			"execution_id", execID, "step", stepID, "tasks", len(step.TaskIDs))
	}

	return &models.Result{
		ExecutionID:    execID,
		StepsCompleted: len(p.Steps),
		Results:        results,
	}, nil
}

// runStep dispatches the step's tasks and collects their outcomes.
func (o *Orchestrator) runStep(ctx context.Context, execID string, step models.Step) map[string]models.TaskOutcome {
	outcomes := make(map[string]models.TaskOutcome, len(step.TaskIDs))

	if step.Parallel && len(step.TaskIDs) > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		for _, taskID := range step.TaskIDs {
			g.Go(func() error {
				outcome := o.dispatchTask(gctx, execID, taskID)
				mu.Lock()
				outcomes[taskID] = outcome
				mu.Unlock()
				return nil
			})
		}
		g.Wait()
		return outcomes
	}

	for _, taskID := range step.TaskIDs {
		outcomes[taskID] = o.dispatchTask(ctx, execID, taskID)
	}
	return outcomes
}

// dispatchTask sends one task to its allocated worker and waits for the
// correlated response. Unallocated or unknown tasks are skipped; a
// worker error or timeout marks the task failed without failing the
// execution.
func (o *Orchestrator) dispatchTask(ctx context.Context, execID, taskID string) models.TaskOutcome {
	o.mu.Lock()
	task := o.tasks[taskID]
	workerID, allocated := o.allocations[execID][taskID]
	var goalContext map[string]any
	if exec, ok := o.executions[execID]; ok && exec.Context != nil {
		goalContext = make(map[string]any, len(exec.Context))
		for k, v := range exec.Context {
			goalContext[k] = v
		}
	}
	if task == nil || !allocated {
		if task != nil {
			task.Status = models.TaskStatusSkipped
		}
		o.mu.Unlock()
		o.logger.Warn("skipping task", "execution_id", execID, "task_id", taskID)
		if task != nil {
			o.monitor.UpdateTaskStatus(taskID, map[string]any{
				"status": models.TaskStatusSkipped,
			})
		}
		return models.TaskOutcome{
			Status:  models.TaskStatusSkipped,
			Message: "Task not found or not allocated",
		}
	}
	task.Status = models.TaskStatusInProgress
	taskCopy := *task
	taskCopy.DependsOn = append([]string(nil), task.DependsOn...)
	taskCopy.RequiredCapabilities = append([]string(nil), task.RequiredCapabilities...)

	conversationID := uuid.NewString()
	reply := make(chan models.Message, 1)
	o.pending[conversationID] = reply
	o.mu.Unlock()

	o.monitor.UpdateTaskStatus(taskID, map[string]any{
		"status": models.TaskStatusInProgress,
	})
	o.broker.Publish(models.NewMessage(receiverID, workerID, map[string]any{
		"task_id":      taskID,
		"execution_id": execID,
		"task":         &taskCopy,
		"context":      goalContext,
	}, models.MessageTypeTaskExecution, conversationID))

	timer := time.NewTimer(o.dispatchTimeout)
	defer timer.Stop()

	select {
	case msg := <-reply:
		if msg.Type == models.MessageTypeError {
			errText, _ := msg.Content["error"].(string)
			return o.finishTask(taskID, models.TaskOutcome{
				Status:  models.TaskStatusFailed,
				Message: errText,
			})
		}
		return o.finishTask(taskID, models.TaskOutcome{
			Status: models.TaskStatusCompleted,
			Output: msg.Content,
		})
	case <-timer.C:
		o.abandonConversation(conversationID)
		return o.finishTask(taskID, models.TaskOutcome{
			Status:  models.TaskStatusFailed,
			Message: fmt.Sprintf("no response from worker %s within %s", workerID, o.dispatchTimeout),
		})
	case <-ctx.Done():
		o.abandonConversation(conversationID)
		return o.finishTask(taskID, models.TaskOutcome{
			Status:  models.TaskStatusFailed,
			Message: ctx.Err().Error(),
		})
	}
}

// finishTask records a task's terminal status in the task store and
// monitor and returns the outcome.
func (o *Orchestrator) finishTask(taskID string, outcome models.TaskOutcome) models.TaskOutcome {
	o.mu.Lock()
	if task, ok := o.tasks[taskID]; ok {
		task.Status = outcome.Status
	}
	o.mu.Unlock()

	fields := map[string]any{"status": outcome.Status}
	if outcome.Message != "" {
		fields["message"] = outcome.Message
	}
	o.monitor.UpdateTaskStatus(taskID, fields)
	return outcome
}

// abandonConversation forgets a pending reply channel after a timeout or
// cancellation so a late response is dropped instead of delivered.
func (o *Orchestrator) abandonConversation(conversationID string) {
	o.mu.Lock()
	delete(o.pending, conversationID)
	o.mu.Unlock()
}

// releaseWorkers marks allocated workers idle once their execution's
// dispatching is done. Idle workers remain allocatable; the status only
// records that their assigned tasks finished.
func (o *Orchestrator) releaseWorkers(allocations map[string]string) {
	released := make(map[string]bool, len(allocations))
	for _, workerID := range allocations {
		if released[workerID] {
			continue
		}
		released[workerID] = true
		o.workers.SetStatus(workerID, models.WorkerStatusIdle)
		o.monitor.UpdateWorkerStatus(workerID, map[string]any{
			"status": models.WorkerStatusIdle,
		})
	}
}

// completeExecution records the result and moves the execution to
// completed.
func (o *Orchestrator) completeExecution(execID string, result *models.Result) {
	o.mu.Lock()
	exec, ok := o.executions[execID]
	if !ok || !exec.Status.CanTransition(models.ExecutionStatusCompleted) {
		o.mu.Unlock()
		return
	}
	now := time.Now()
	exec.Status = models.ExecutionStatusCompleted
	exec.EndTime = &now
	exec.Result = result
	record := exec.Clone()
	o.mu.Unlock()

	o.logger.Info("execution completed",
		"execution_id", execID, "steps", result.StepsCompleted)
	o.journalExecution(record)
}

// failExecution appends the error and moves the execution to failed.
func (o *Orchestrator) failExecution(execID string, err error) {
	o.mu.Lock()
	exec, ok := o.executions[execID]
	if !ok {
		o.mu.Unlock()
		return
	}
	exec.Errors = append(exec.Errors, err.Error())
	if exec.Status.CanTransition(models.ExecutionStatusFailed) {
		now := time.Now()
		exec.Status = models.ExecutionStatusFailed
		exec.EndTime = &now
	}
	record := exec.Clone()
	o.mu.Unlock()

	o.logger.Error("execution failed", "execution_id", execID, "error", err)
	o.journalExecution(record)
}

// journalExecution persists a terminal execution record when a journal
// is configured.
func (o *Orchestrator) journalExecution(exec *models.Execution) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordExecution(context.Background(), exec); err != nil {
		o.logger.Warn("journal write failed",
			"execution_id", exec.ID, "error", err)
	}
}
