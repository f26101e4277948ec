package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MockGenerator is a deterministic Generator for development and tests.
// It inspects the prompt to decide whether it is being asked to decompose
// a goal, plan tasks, or act as a worker, and returns canned output with
// the right shape.
type MockGenerator struct{}

// taskLinePattern matches the "- <task-id>: <title>" lines the planner
// prompt uses to enumerate tasks.
var taskLinePattern = regexp.MustCompile(`(?m)^- ([A-Za-z0-9][A-Za-z0-9_.-]*): `)

// Generate returns a canned response shaped for the detected request kind.
func (MockGenerator) Generate(_ context.Context, systemPrompt, prompt string) (string, error) {
	lower := strings.ToLower(systemPrompt + "\n" + prompt)

	switch {
	case strings.Contains(lower, "break down this goal") || strings.Contains(lower, "decompos"):
		return mockDecomposition(prompt), nil
	case strings.Contains(lower, "execution plan") || strings.Contains(lower, "planning"):
		return mockPlan(prompt), nil
	case strings.Contains(lower, "research"):
		return "Research findings: gathered background information from reliable sources.", nil
	case strings.Contains(lower, "analy"):
		return "Analysis: identified the main patterns and their likely causes.", nil
	case strings.Contains(lower, "synthes"):
		return "Synthesis: integrated the findings into a coherent summary.", nil
	default:
		return "Processed the request.", nil
	}
}

func mockDecomposition(prompt string) string {
	goal := "the provided goal"
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Goal:"); ok {
			if trimmed := strings.TrimSpace(rest); trimmed != "" {
				goal = trimmed
			}
			break
		}
	}

	subtasks := []map[string]any{
		{
			"title":                 fmt.Sprintf("Research background information on %s", goal),
			"description":           fmt.Sprintf("Gather background information about %s from reliable sources.", goal),
			"dependencies":          []string{},
			"required_capabilities": []string{"research"},
		},
		{
			"title":                 fmt.Sprintf("Analyze key aspects of %s", goal),
			"description":           fmt.Sprintf("Analyze the main components and factors related to %s.", goal),
			"dependencies":          []string{"Research background information"},
			"required_capabilities": []string{"analysis"},
		},
		{
			"title":                 fmt.Sprintf("Synthesize findings about %s", goal),
			"description":           fmt.Sprintf("Integrate research and analysis into a coherent answer to %s.", goal),
			"dependencies":          []string{"Research background information", "Analyze key aspects"},
			"required_capabilities": []string{"synthesis"},
		},
	}

	out, _ := json.MarshalIndent(subtasks, "", "  ")
	return string(out)
}

func mockPlan(prompt string) string {
	var taskIDs []string
	for _, match := range taskLinePattern.FindAllStringSubmatch(prompt, -1) {
		taskIDs = append(taskIDs, match[1])
	}

	var steps []map[string]any
	if len(taskIDs) > 0 {
		steps = append(steps, map[string]any{
			"name":              "Step 1: Initial work",
			"tasks":             taskIDs[:1],
			"parallel":          false,
			"expected_outcomes": "Groundwork complete",
		})
	}
	if len(taskIDs) > 1 {
		steps = append(steps, map[string]any{
			"name":              "Step 2: Remaining work",
			"tasks":             taskIDs[1:],
			"parallel":          true,
			"conditions":        "Step 1 complete",
			"expected_outcomes": "All tasks resolved",
		})
	}

	out, _ := json.MarshalIndent(map[string]any{"steps": steps}, "", "  ")
	return string(out)
}
