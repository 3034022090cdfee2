// Package cmd holds the CLI surface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "crosscut",
	Short:         "LLM-assisted log triage",
	Long:          "Crosscut scans log files for error signals, classifies them with an LLM, proposes ranked fixes, and optionally notifies Slack and JIRA.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(NewAnalyzeCmd())
}

func Execute() error {
	return rootCmd.Execute()
}
