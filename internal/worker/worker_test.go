package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

type stubGenerator struct {
	response     string
	err          error
	systemPrompt string
	prompt       string
}

func (s *stubGenerator) Generate(_ context.Context, systemPrompt, prompt string) (string, error) {
	s.systemPrompt = systemPrompt
	s.prompt = prompt
	return s.response, s.err
}

func TestLLMWorker_Process(t *testing.T) {
	gen := &stubGenerator{response: "quantum computing uses qubits"}
	w := NewLLM(Definition{
		ID:           "research-worker-1",
		Name:         "Research Specialist",
		Capabilities: []string{"research"},
		SystemPrompt: "You are a researcher.",
	}, gen)

	out, err := w.Process(context.Background(), Request{
		TaskID:      "exec-1-task-0",
		ExecutionID: "exec-1",
		Task: &models.Task{
			ID:          "exec-1-task-0",
			Title:       "Research quantum computing",
			Description: "Gather background material",
		},
		Context: map[string]any{"depth": "overview"},
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if out["task_id"] != "exec-1-task-0" {
		t.Errorf("task_id = %v, want exec-1-task-0", out["task_id"])
	}
	if out["result"] != "quantum computing uses qubits" {
		t.Errorf("result = %v", out["result"])
	}

	if gen.systemPrompt != "You are a researcher." {
		t.Errorf("system prompt = %q", gen.systemPrompt)
	}
	for _, want := range []string{"Task: Research quantum computing", "Description: Gather background material", "depth: overview"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gen.prompt)
		}
	}
}

func TestLLMWorker_ProcessWithoutTaskDetail(t *testing.T) {
	gen := &stubGenerator{response: "done"}
	w := NewLLM(Definition{ID: "w1", Name: "W", Capabilities: []string{"x"}}, gen)

	if _, err := w.Process(context.Background(), Request{TaskID: "t-9"}); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !strings.Contains(gen.prompt, "Task: t-9") {
		t.Errorf("prompt should fall back to the task ID:\n%s", gen.prompt)
	}
}

func TestLLMWorker_GeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	w := NewLLM(Definition{ID: "w1", Name: "W", Capabilities: []string{"x"}}, gen)

	_, err := w.Process(context.Background(), Request{TaskID: "t-1"})
	if err == nil {
		t.Fatal("expected error when generator fails")
	}
	if !strings.Contains(err.Error(), "w1") {
		t.Errorf("error should name the worker: %v", err)
	}
}

func TestLLMWorker_Descriptor(t *testing.T) {
	def := Definition{
		ID:           "analysis-worker-1",
		Name:         "Analysis Expert",
		Description:  "Analyzes data",
		Capabilities: []string{"analysis", "critical_thinking"},
	}
	d := NewLLM(def, &stubGenerator{}).Descriptor()

	if d.ID != def.ID || d.Name != def.Name || d.Description != def.Description {
		t.Errorf("descriptor = %+v", d)
	}
	if d.Status != models.WorkerStatusAvailable {
		t.Errorf("status = %q, want available", d.Status)
	}
	d.Capabilities[0] = "mutated"
	if NewLLM(def, &stubGenerator{}).Descriptor().Capabilities[0] != "analysis" {
		t.Error("Descriptor should copy the capability slice")
	}
}

func TestDefaultDefinitions(t *testing.T) {
	defs := DefaultDefinitions()
	if len(defs) != 3 {
		t.Fatalf("got %d definitions, want 3", len(defs))
	}
	seen := map[string]bool{}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			t.Errorf("default %s invalid: %v", def.ID, err)
		}
		if def.SystemPrompt == "" {
			t.Errorf("default %s has no system prompt", def.ID)
		}
		seen[def.ID] = true
	}
	for _, id := range []string{"research-worker-1", "analysis-worker-1", "synthesis-worker-1"} {
		if !seen[id] {
			t.Errorf("missing default worker %s", id)
		}
	}
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workers.yaml")
	roster := `workers:
  - id: research-worker-1
    name: Research Specialist
    description: Gathers information
    capabilities: [research, summarization]
    system_prompt: You are a researcher.
  - id: analysis-worker-1
    name: Analysis Expert
    capabilities: [analysis]
    system_prompt: You are an analyst.
`
	if err := os.WriteFile(path, []byte(roster), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster returned error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d workers, want 2", len(defs))
	}
	if defs[0].ID != "research-worker-1" || defs[1].ID != "analysis-worker-1" {
		t.Errorf("unexpected order: %+v", defs)
	}
	if len(defs[0].Capabilities) != 2 {
		t.Errorf("capabilities = %v", defs[0].Capabilities)
	}
}

func TestLoadRoster_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"empty roster", "workers: []\n"},
		{"missing id", "workers:\n  - name: Nameless\n    capabilities: [x]\n"},
		{"missing capabilities", "workers:\n  - id: w1\n    name: W\n"},
		{"malformed yaml", "workers: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRoster(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRoster_MissingFile(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
