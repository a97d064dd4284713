// Package main provides the entry point for the recordings-analyzer CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PostHog/exported-recordings-analyzer/cmd/recordings-analyzer/commands"
	"github.com/PostHog/exported-recordings-analyzer/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recordings-analyzer",
		Short: "Analyze exported session recordings",
		Long: `Recordings-analyzer inspects exported session-replay recordings.

Commands:
  analyze   Analyze one exported recording JSON document
  scan      Analyze a directory of newline-delimited export files
  times     Convert snapshot timestamps to ISO-8601
  mcp       Start MCP server for AI agent integration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewTimesCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "recordings-analyzer %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
