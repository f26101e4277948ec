// Package server exposes the orchestrator over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// Orchestrator is the surface the HTTP handlers need. The concrete
// orchestrator satisfies it.
type Orchestrator interface {
	SubmitGoal(goal string, goalContext map[string]any) (string, error)
	Execution(id string) (*models.Execution, bool)
	Executions() []*models.Execution
	Workers() []*models.Worker
	WorkerStatus(workerID string) (map[string]any, bool)
}

// Server wires the orchestrator into a gin router.
type Server struct {
	orch   Orchestrator
	logger *slog.Logger
	engine *gin.Engine
}

// New creates the HTTP server. A nil logger defaults to slog.Default().
func New(orch Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{orch: orch, logger: logger, engine: engine}
	s.routes()
	return s
}

// Handler returns the root http.Handler, used directly by tests and by
// Run via http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	api.POST("/goals", s.submitGoal)
	api.GET("/executions", s.listExecutions)
	api.GET("/executions/:id", s.getExecution)
	api.GET("/workers", s.listWorkers)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// goalRequest is the POST /api/goals payload.
type goalRequest struct {
	Goal    string         `json:"goal"`
	Context map[string]any `json:"context"`
}

func (s *Server) submitGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.orch.SubmitGoal(req.Goal, req.Context)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("goal accepted", "execution_id", id)
	c.JSON(http.StatusAccepted, gin.H{
		"execution_id": id,
		"status":       "processing",
	})
}

func (s *Server) getExecution(c *gin.Context) {
	exec, ok := s.orch.Execution(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "execution not found"})
		return
	}
	c.JSON(http.StatusOK, exec)
}

func (s *Server) listExecutions(c *gin.Context) {
	execs := s.orch.Executions()
	if execs == nil {
		execs = []*models.Execution{}
	}
	c.JSON(http.StatusOK, gin.H{"executions": execs})
}

// workerView is a worker descriptor joined with its monitor record.
type workerView struct {
	*models.Worker
	Monitor map[string]any `json:"monitor,omitempty"`
}

func (s *Server) listWorkers(c *gin.Context) {
	workers := s.orch.Workers()
	views := make([]workerView, 0, len(workers))
	for _, w := range workers {
		view := workerView{Worker: w}
		if record, ok := s.orch.WorkerStatus(w.ID); ok {
			view.Monitor = record
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"workers": views})
}
