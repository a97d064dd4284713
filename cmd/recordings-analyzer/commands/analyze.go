// Package commands implements the recordings-analyzer CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PostHog/exported-recordings-analyzer/internal/config"
	"github.com/PostHog/exported-recordings-analyzer/internal/logging"
	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/stream"
)

// NewAnalyzeCommand creates the single-document analysis command.
func NewAnalyzeCommand() *cobra.Command {
	var (
		configPath string
		collectRaw bool
		plotPath   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <recording.json>",
		Short: "Analyze one exported recording document",
		Long: `Analyze streams the data.snapshots batches of one exported recording
JSON document, classifies every event, and prints the aggregate report.

The document is read incrementally; arbitrarily large exports fit in
constant memory.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("raw") {
				cfg.Analyze.CollectRaw = collectRaw
			}

			logger := logging.New(cfg.Logging)
			classifier := analysis.NewClassifier(logger)

			var collector *stream.RawCollector
			if cfg.Analyze.CollectRaw {
				collector = stream.NewRawCollector()
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer f.Close()

			result, err := stream.NewExportDriver(classifier, collector).Analyze(f)
			if err != nil {
				return err
			}

			return emitOutputs(cmd.OutOrStdout(), cfg, result, collector, args[0], plotPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().BoolVar(&collectRaw, "raw", false, "write the decompressed raw events artifact next to the input")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write an HTML addition-size chart to this path")

	return cmd
}
