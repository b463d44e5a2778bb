// Package cli wires the revise commands together.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Hunk-level code review with trust rules",
	Long: `revise tracks code review at the hunk level: approve, reject, or
defer individual hunks, trust whole categories of mechanical changes,
and let the review survive restarts and branch switches.

Review state is stored under the repository's git directory, keyed by
the comparison being reviewed.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(trustCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
