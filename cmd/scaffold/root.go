package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Goal orchestration engine",
	Long: `Scaffold turns high-level goals into coordinated work.

A submitted goal is decomposed into subtasks by a language model, the
subtasks are sequenced into an execution plan, capability-matched
workers are allocated, and each plan step is dispatched over an
in-process message broker.

Run 'scaffold serve' to expose the orchestrator over HTTP, or
'scaffold run <goal>' to process a single goal from the command line.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (overrides discovery)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
