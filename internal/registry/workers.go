package registry

import (
	"log/slog"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Descriptor type tags.
const (
	typeWorker          = "worker"
	typeTool            = "tool"
	typeKnowledgeSource = "knowledge_source"
)

// WorkerRegistry stores worker descriptors. It is the allocator's read path:
// Workers and QueryByCapability return workers in registration order.
type WorkerRegistry struct {
	*Registry
}

// NewWorkerRegistry creates an empty worker registry.
func NewWorkerRegistry(logger *slog.Logger) *WorkerRegistry {
	return &WorkerRegistry{Registry: New(logger)}
}

// RegisterWorker stores a worker descriptor. A worker with no explicit
// status is registered as available.
func (r *WorkerRegistry) RegisterWorker(w *models.Worker) {
	status := w.Status
	if status == "" {
		status = models.WorkerStatusAvailable
	}
	r.Register(w.ID, Metadata{
		"type":         typeWorker,
		"name":         w.Name,
		"description":  w.Description,
		"capabilities": append([]string(nil), w.Capabilities...),
		"status":       status,
	})
}

// Worker returns the worker descriptor for the given ID.
func (r *WorkerRegistry) Worker(id string) (*models.Worker, bool) {
	md, ok := r.Get(id)
	if !ok || md["type"] != typeWorker {
		return nil, false
	}
	return workerFromMetadata(id, md), true
}

// Workers returns all registered workers in registration order.
func (r *WorkerRegistry) Workers() []*models.Worker {
	var workers []*models.Worker
	for _, res := range r.Query(Metadata{"type": typeWorker}) {
		workers = append(workers, workerFromMetadata(res.ID, res.Metadata))
	}
	return workers
}

// QueryByCapability returns the workers whose capability set contains the
// given capability, in registration order.
func (r *WorkerRegistry) QueryByCapability(capability string) []*models.Worker {
	var workers []*models.Worker
	for _, res := range r.Query(Metadata{"type": typeWorker}) {
		w := workerFromMetadata(res.ID, res.Metadata)
		if w.HasCapabilities([]string{capability}) {
			workers = append(workers, w)
		}
	}
	return workers
}

// SetStatus updates a registered worker's status. Unknown IDs are ignored.
func (r *WorkerRegistry) SetStatus(id string, status models.WorkerStatus) {
	md, ok := r.Get(id)
	if !ok || md["type"] != typeWorker {
		return
	}
	updated := make(Metadata, len(md))
	for k, v := range md {
		updated[k] = v
	}
	updated["status"] = status
	r.Register(id, updated)
}

func workerFromMetadata(id string, md Metadata) *models.Worker {
	w := &models.Worker{ID: id}
	if name, ok := md["name"].(string); ok {
		w.Name = name
	}
	if desc, ok := md["description"].(string); ok {
		w.Description = desc
	}
	if caps, ok := md["capabilities"].([]string); ok {
		w.Capabilities = append([]string(nil), caps...)
	}
	if status, ok := md["status"].(models.WorkerStatus); ok {
		w.Status = status
	}
	return w
}

// ToolRegistry stores tool descriptors with their I/O schemas.
type ToolRegistry struct {
	*Registry
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry(logger *slog.Logger) *ToolRegistry {
	return &ToolRegistry{Registry: New(logger)}
}

// RegisterTool stores a tool descriptor.
func (r *ToolRegistry) RegisterTool(id, name, description string, inputSchema, outputSchema map[string]any) {
	r.Register(id, Metadata{
		"type":          typeTool,
		"name":          name,
		"description":   description,
		"input_schema":  inputSchema,
		"output_schema": outputSchema,
	})
}

// KnowledgeSourceRegistry stores knowledge-source descriptors.
type KnowledgeSourceRegistry struct {
	*Registry
}

// NewKnowledgeSourceRegistry creates an empty knowledge-source registry.
func NewKnowledgeSourceRegistry(logger *slog.Logger) *KnowledgeSourceRegistry {
	return &KnowledgeSourceRegistry{Registry: New(logger)}
}

// RegisterKnowledgeSource stores a knowledge-source descriptor.
func (r *KnowledgeSourceRegistry) RegisterKnowledgeSource(id, name, description, sourceType string, accessInfo map[string]any) {
	r.Register(id, Metadata{
		"type":        typeKnowledgeSource,
		"name":        name,
		"description": description,
		"source_type": sourceType,
		"access_info": accessInfo,
	})
}
