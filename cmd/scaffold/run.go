package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

var (
	runMock    bool
	runContext []string
	runWait    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Process a single goal and print the result",
	Long: `Submit one goal, wait for the execution to finish, and print the
outcome of every task.

Context values are passed to the decomposer, planner, and workers:

  scaffold run "summarize recent fusion research" --context depth=overview

Use --mock to run the full pipeline against the deterministic built-in
model instead of the Anthropic API.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoal,
}

func init() {
	runCmd.Flags().BoolVar(&runMock, "mock", false, "Use the deterministic mock model instead of the API")
	runCmd.Flags().StringArrayVar(&runContext, "context", nil, "Goal context as key=value (repeatable)")
	runCmd.Flags().DurationVar(&runWait, "wait", 10*time.Minute, "How long to wait for the execution to finish")
}

func runGoal(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")

	goalContext, err := parseContext(runContext)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runMock {
		cfg.Anthropic.UseMock = true
	}
	logger := newLogger(cfg)

	orch, _, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	defer orch.Close()

	id, err := orch.SubmitGoal(goal, goalContext)
	if err != nil {
		return err
	}
	fmt.Printf("execution %s\n", color.CyanString(id))

	exec, err := awaitExecution(orch, id, runWait)
	if err != nil {
		return err
	}
	printExecution(exec)

	if exec.Status == models.ExecutionStatusFailed {
		return fmt.Errorf("execution failed")
	}
	return nil
}

// parseContext turns key=value flags into a goal context map.
func parseContext(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context %q, want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// awaitExecution polls until the execution is terminal or the wait
// budget runs out.
func awaitExecution(orch interface {
	Execution(id string) (*models.Execution, bool)
}, id string, wait time.Duration) (*models.Execution, error) {
	deadline := time.Now().Add(wait)
	lastStatus := models.ExecutionStatus("")

	for time.Now().Before(deadline) {
		exec, ok := orch.Execution(id)
		if !ok {
			return nil, fmt.Errorf("execution %s disappeared", id)
		}
		if exec.Status != lastStatus {
			fmt.Printf("  %s\n", statusColor(exec.Status).Sprint(exec.Status))
			lastStatus = exec.Status
		}
		if exec.Status.Terminal() {
			return exec, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("execution %s did not finish within %s", id, wait)
}

func printExecution(exec *models.Execution) {
	fmt.Println()
	fmt.Printf("goal:   %s\n", exec.Goal)
	fmt.Printf("status: %s\n", statusColor(exec.Status).Sprint(exec.Status))
	if exec.EndTime != nil {
		fmt.Printf("took:   %s\n", exec.EndTime.Sub(exec.StartTime).Round(time.Millisecond))
	}

	for _, msg := range exec.Errors {
		color.Red("error: %s", msg)
	}
	if exec.Result == nil {
		return
	}

	fmt.Printf("steps:  %d\n", exec.Result.StepsCompleted)
	for step, outcomes := range exec.Result.Results {
		fmt.Printf("\n%s\n", color.New(color.Bold).Sprint(step))
		for taskID, outcome := range outcomes {
			marker := outcomeColor(outcome.Status).Sprintf("[%s]", outcome.Status)
			fmt.Printf("  %s %s", marker, taskID)
			if outcome.Message != "" {
				fmt.Printf(" (%s)", outcome.Message)
			}
			fmt.Println()
			if result, ok := outcome.Output["result"].(string); ok && result != "" {
				fmt.Printf("      %s\n", result)
			}
		}
	}
}

func statusColor(status models.ExecutionStatus) *color.Color {
	switch status {
	case models.ExecutionStatusCompleted:
		return color.New(color.FgGreen)
	case models.ExecutionStatusFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func outcomeColor(status models.TaskStatus) *color.Color {
	switch status {
	case models.TaskStatusCompleted:
		return color.New(color.FgGreen)
	case models.TaskStatusFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
