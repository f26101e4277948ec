// Package llm provides the language-model client used by the decomposer,
// the planner, and LLM-backed workers.
package llm

import "context"

// Generator produces a completion for a prompt. It is the only contract
// the rest of the system has with a language model, which keeps the
// reasoning provider external to the orchestration core.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}
