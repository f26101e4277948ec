package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestMockGenerator_Decomposition(t *testing.T) {
	var gen MockGenerator

	prompt := "Break down this goal into a list of subtasks.\n\nGoal: Summarize X\n"
	resp, err := gen.Generate(context.Background(), "You are an expert in task decomposition.", prompt)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	var subtasks []map[string]any
	if err := json.Unmarshal([]byte(resp), &subtasks); err != nil {
		t.Fatalf("decomposition response is not a JSON array: %v", err)
	}
	if len(subtasks) == 0 {
		t.Fatal("decomposition should produce at least one subtask")
	}
	if title := subtasks[0]["title"].(string); !strings.Contains(title, "Summarize X") {
		t.Errorf("subtask title %q should mention the goal", title)
	}
}

func TestMockGenerator_PlanEchoesTaskIDs(t *testing.T) {
	var gen MockGenerator

	prompt := "Create an execution plan for these tasks:\n" +
		"- exec-1-task-0: Research background\n" +
		"- exec-1-task-1: Analyze findings\n"
	resp, err := gen.Generate(context.Background(), "You are an expert in planning.", prompt)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	var plan struct {
		Steps []struct {
			Tasks    []string `json:"tasks"`
			Parallel bool     `json:"parallel"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(resp), &plan); err != nil {
		t.Fatalf("plan response is not valid JSON: %v", err)
	}

	var all []string
	for _, step := range plan.Steps {
		all = append(all, step.Tasks...)
	}
	if len(all) != 2 || all[0] != "exec-1-task-0" || all[1] != "exec-1-task-1" {
		t.Errorf("plan tasks = %v, want the prompt's task IDs", all)
	}
}

func TestMockGenerator_WorkerResponses(t *testing.T) {
	var gen MockGenerator

	tests := []struct {
		name   string
		system string
		want   string
	}{
		{"research prompt", "You are a research specialist.", "Research"},
		{"analysis prompt", "You are an analysis expert.", "Analysis"},
		{"synthesis prompt", "You are a synthesis specialist.", "Synthesis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := gen.Generate(context.Background(), tt.system, "Task: do the work")
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if !strings.HasPrefix(resp, tt.want) {
				t.Errorf("response %q should start with %q", resp, tt.want)
			}
		})
	}
}
