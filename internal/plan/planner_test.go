package plan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (s *stubGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		steps    int
		wantErr  bool
	}{
		{
			name:     "plain JSON object",
			response: `{"steps": [{"name": "S1", "tasks": ["t-1"], "parallel": false}]}`,
			steps:    1,
		},
		{
			name: "fenced with prose",
			response: "The plan:\n```json\n" +
				`{"steps": [{"tasks": ["t-1"], "parallel": true}, {"tasks": ["t-2", "t-3"], "parallel": false}]}` +
				"\n```",
			steps: 2,
		},
		{
			name:     "no object",
			response: "cannot plan",
			wantErr:  true,
		},
		{
			name:     "no steps",
			response: `{"steps": []}`,
			wantErr:  true,
		},
		{
			name:     "step without tasks",
			response: `{"steps": [{"name": "empty", "tasks": []}]}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse returned error: %v", err)
			}
			if len(got.Steps) != tt.steps {
				t.Errorf("parsed %d steps, want %d", len(got.Steps), tt.steps)
			}
		})
	}
}

func TestLLMPlanner_CreatePlan(t *testing.T) {
	gen := &stubGenerator{
		response: `{"steps": [{"name": "Step 1", "tasks": ["exec-1-task-0"], "parallel": false}]}`,
	}
	p := NewLLM(gen, nil)

	tasks := []*models.Task{
		{ID: "exec-1-task-0", Title: "Research", RequiredCapabilities: []string{"research"}, DependsOn: []string{"none"}},
	}
	plan, err := p.CreatePlan(context.Background(), tasks, map[string]any{"deadline": "friday"})
	if err != nil {
		t.Fatalf("CreatePlan returned error: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].TaskIDs[0] != "exec-1-task-0" {
		t.Errorf("unexpected plan: %+v", plan)
	}

	if !strings.Contains(gen.prompt, "- exec-1-task-0: Research") {
		t.Error("prompt should list tasks by ID")
	}
	if !strings.Contains(gen.prompt, "deadline: friday") {
		t.Error("prompt should carry the context")
	}
}

func TestLLMPlanner_GeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	p := NewLLM(gen, nil)

	if _, err := p.CreatePlan(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error when generator fails")
	}
}
