package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

const planningSystemPrompt = `You are an expert in planning and sequencing tasks. Your job is to create an execution plan for a set of tasks, considering their dependencies and requirements.`

const planningInstructions = `Create an execution plan for these tasks. For each step in the plan, specify:
1. Which task IDs should be executed (use the exact IDs listed above)
2. Whether the step's tasks can run in parallel or must be sequential
3. Any conditions that must be met before execution
4. Expected outcomes or success criteria

Respond with ONLY a JSON object of the form
{"steps": [{"name": ..., "tasks": [...], "parallel": ..., "conditions": ..., "expected_outcomes": ...}]}.`

// buildPlanningPrompt renders the user prompt listing each task on a
// "- <id>: <title>" line so responses can reference exact IDs.
func buildPlanningPrompt(tasks []*models.Task, goalContext map[string]any) string {
	var b strings.Builder
	b.WriteString("Tasks:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s: %s", t.ID, t.Title)
		if len(t.DependsOn) > 0 {
			fmt.Fprintf(&b, " (depends on: %s)", strings.Join(t.DependsOn, ", "))
		}
		if len(t.RequiredCapabilities) > 0 {
			fmt.Fprintf(&b, " (requires: %s)", strings.Join(t.RequiredCapabilities, ", "))
		}
		b.WriteString("\n")
	}

	if len(goalContext) > 0 {
		b.WriteString("\nAdditional Context:\n")
		keys := make([]string, 0, len(goalContext))
		for k := range goalContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, goalContext[k])
		}
	}

	b.WriteString("\n")
	b.WriteString(planningInstructions)
	return b.String()
}
