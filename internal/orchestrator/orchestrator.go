// Package orchestrator coordinates the full goal lifecycle: decompose a
// goal into tasks, plan their execution order, allocate workers by
// capability, and dispatch tasks over the message broker. Each submitted
// goal runs as an independent execution with its own state record.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/scaffold/internal/allocate"
	"github.com/ShayCichocki/scaffold/internal/broker"
	"github.com/ShayCichocki/scaffold/internal/decompose"
	"github.com/ShayCichocki/scaffold/internal/monitor"
	"github.com/ShayCichocki/scaffold/internal/plan"
	"github.com/ShayCichocki/scaffold/internal/registry"
	"github.com/ShayCichocki/scaffold/internal/shared"
	"github.com/ShayCichocki/scaffold/internal/worker"
	"github.com/ShayCichocki/scaffold/pkg/models"
)

// receiverID is the orchestrator's address on the broker. Workers send
// their task responses here.
const receiverID = "orchestrator"

// defaultDispatchTimeout bounds how long a dispatched task may wait for a
// worker response before it is marked failed.
const defaultDispatchTimeout = 120 * time.Second

// Journal persists terminal execution records. The orchestrator treats
// journaling as best effort: a write failure is logged, never surfaced to
// the execution.
type Journal interface {
	RecordExecution(ctx context.Context, exec *models.Execution) error
}

// Orchestrator owns the registries, broker, shared context, and execution
// records, and drives each execution through its state machine on a
// dedicated goroutine.
type Orchestrator struct {
	logger     *slog.Logger
	decomposer decompose.Decomposer
	planner    plan.Planner

	broker    *broker.Broker
	workers   *registry.WorkerRegistry
	tools     *registry.ToolRegistry
	knowledge *registry.KnowledgeSourceRegistry
	sharedCtx *shared.Context
	monitor   *monitor.Monitor
	allocator *allocate.Allocator

	dispatchTimeout time.Duration
	journal         Journal

	rootCtx context.Context
	cancel  context.CancelFunc

	mu          sync.RWMutex
	executions  map[string]*models.Execution
	order       []string
	tasks       map[string]*models.Task
	plans       map[string]*models.Plan
	allocations map[string]map[string]string
	pending     map[string]chan models.Message

	wg sync.WaitGroup
}

// New creates an orchestrator with its own broker, registries, shared
// context, and monitor.
func New(decomposer decompose.Decomposer, planner plan.Planner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:          slog.Default(),
		decomposer:      decomposer,
		planner:         planner,
		dispatchTimeout: defaultDispatchTimeout,
		executions:      make(map[string]*models.Execution),
		tasks:           make(map[string]*models.Task),
		plans:           make(map[string]*models.Plan),
		allocations:     make(map[string]map[string]string),
		pending:         make(map[string]chan models.Message),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.rootCtx, o.cancel = context.WithCancel(context.Background())

	o.broker = broker.New(o.logger)
	o.workers = registry.NewWorkerRegistry(o.logger)
	o.tools = registry.NewToolRegistry(o.logger)
	o.knowledge = registry.NewKnowledgeSourceRegistry(o.logger)
	o.sharedCtx = shared.NewContext()
	o.monitor = monitor.New(o.sharedCtx)
	o.allocator = allocate.New(o.logger)

	o.broker.Subscribe(receiverID, o.routeResponse)
	return o
}

// RegisterWorker adds a worker to the registry and monitor and wires its
// message handler into the broker. Registering an existing ID replaces
// the previous worker.
func (o *Orchestrator) RegisterWorker(w worker.Worker) {
	desc := w.Descriptor()
	o.workers.RegisterWorker(desc)
	o.monitor.RegisterWorker(desc)
	o.broker.Subscribe(desc.ID, o.workerHandler(w))
	o.logger.Info("registered worker",
		"worker_id", desc.ID, "capabilities", desc.Capabilities)
}

// RegisterTool records a tool descriptor in the tool registry.
func (o *Orchestrator) RegisterTool(id, name, description string, inputSchema, outputSchema map[string]any) {
	o.tools.RegisterTool(id, name, description, inputSchema, outputSchema)
}

// RegisterKnowledgeSource records a knowledge-source descriptor.
func (o *Orchestrator) RegisterKnowledgeSource(id, name, description, sourceType string, accessInfo map[string]any) {
	o.knowledge.RegisterKnowledgeSource(id, name, description, sourceType, accessInfo)
}

// SubmitGoal creates an execution for the goal and starts processing it
// asynchronously. The returned ID can be used to poll for status.
func (o *Orchestrator) SubmitGoal(goal string, goalContext map[string]any) (string, error) {
	if strings.TrimSpace(goal) == "" {
		return "", fmt.Errorf("goal must not be empty")
	}

	exec := &models.Execution{
		ID:        uuid.NewString(),
		Goal:      goal,
		Context:   goalContext,
		Status:    models.ExecutionStatusInitializing,
		StartTime: time.Now(),
		Errors:    []string{},
	}

	o.mu.Lock()
	o.executions[exec.ID] = exec
	o.order = append(o.order, exec.ID)
	o.mu.Unlock()

	o.logger.Info("goal submitted", "execution_id", exec.ID, "goal", goal)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(exec.ID)
	}()
	return exec.ID, nil
}

// Execution returns a copy of the execution record for the given ID.
func (o *Orchestrator) Execution(id string) (*models.Execution, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	exec, ok := o.executions[id]
	if !ok {
		return nil, false
	}
	return exec.Clone(), true
}

// Executions returns copies of all execution records in submission order.
func (o *Orchestrator) Executions() []*models.Execution {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*models.Execution, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.executions[id].Clone())
	}
	return out
}

// Task returns a copy of a task record.
func (o *Orchestrator) Task(id string) (*models.Task, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.tasks[id]
	if !ok {
		return nil, false
	}
	cp := *t
	cp.DependsOn = append([]string(nil), t.DependsOn...)
	cp.RequiredCapabilities = append([]string(nil), t.RequiredCapabilities...)
	return &cp, true
}

// Workers returns the registered worker descriptors in registration order.
func (o *Orchestrator) Workers() []*models.Worker {
	return o.workers.Workers()
}

// WorkerStatus returns the monitor's latest record for a worker.
func (o *Orchestrator) WorkerStatus(workerID string) (map[string]any, bool) {
	return o.monitor.WorkerStatus(workerID)
}

// TaskStatus returns the monitor's latest record for a task.
func (o *Orchestrator) TaskStatus(taskID string) (map[string]any, bool) {
	return o.monitor.TaskStatus(taskID)
}

// MessageHistory returns the broker's message log, optionally filtered by
// conversation ID.
func (o *Orchestrator) MessageHistory(conversationID string) []models.Message {
	return o.broker.History(conversationID)
}

// Close cancels in-flight executions, waits for their run loops to
// settle, and shuts the broker down. Cancelled executions fail between
// plan steps.
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
	o.broker.Close()
}

// workerHandler adapts a worker into a broker handler: it executes
// dispatched tasks and publishes the correlated response or error.
func (o *Orchestrator) workerHandler(w worker.Worker) broker.Handler {
	workerID := w.Descriptor().ID
	return func(msg models.Message) {
		if msg.Type != models.MessageTypeTaskExecution {
			o.logger.Debug("worker ignoring message",
				"worker_id", workerID, "type", msg.Type)
			return
		}

		req := requestFromMessage(msg)
		output, err := w.Process(o.rootCtx, req)
		if err != nil {
			o.broker.Publish(models.NewMessage(workerID, msg.SenderID, map[string]any{
				"task_id": req.TaskID,
				"error":   err.Error(),
			}, models.MessageTypeError, msg.ConversationID))
			return
		}
		o.broker.Publish(models.NewMessage(workerID, msg.SenderID, output,
			models.MessageTypeResponse, msg.ConversationID))
	}
}

// requestFromMessage unpacks a task_execution payload.
func requestFromMessage(msg models.Message) worker.Request {
	var req worker.Request
	if v, ok := msg.Content["task_id"].(string); ok {
		req.TaskID = v
	}
	if v, ok := msg.Content["execution_id"].(string); ok {
		req.ExecutionID = v
	}
	if v, ok := msg.Content["task"].(*models.Task); ok {
		req.Task = v
	}
	if v, ok := msg.Content["context"].(map[string]any); ok {
		req.Context = v
	}
	return req
}

// routeResponse delivers worker replies to the dispatch waiting on the
// conversation. Replies for unknown conversations (late responses after a
// timeout) are dropped.
func (o *Orchestrator) routeResponse(msg models.Message) {
	if msg.Type != models.MessageTypeResponse && msg.Type != models.MessageTypeError {
		return
	}

	o.mu.Lock()
	ch, ok := o.pending[msg.ConversationID]
	if ok {
		delete(o.pending, msg.ConversationID)
	}
	o.mu.Unlock()

	if !ok {
		o.logger.Debug("dropping uncorrelated response",
			"conversation_id", msg.ConversationID, "sender_id", msg.SenderID)
		return
	}
	ch <- msg
}
