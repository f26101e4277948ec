package decompose

import (
	"fmt"
	"sort"
	"strings"
)

const decompositionSystemPrompt = `You are an expert in task decomposition. Your job is to break down complex goals into smaller, manageable subtasks that can be executed by specialized workers.`

const decompositionInstructions = `Break down this goal into a list of subtasks. For each subtask, provide:
1. A descriptive title
2. A detailed description of what needs to be done
3. Any dependencies on other subtasks (by title)
4. Required capabilities needed to complete this subtask

Respond with ONLY a JSON array of subtask objects with the fields
"title", "description", "dependencies", and "required_capabilities".`

// buildDecompositionPrompt renders the user prompt for a goal and its
// context. Context keys are sorted so the prompt is deterministic.
func buildDecompositionPrompt(goal string, goalContext map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", goal)

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
	b.WriteString(decompositionInstructions)
	return b.String()
}
