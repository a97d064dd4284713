package commands

import (
	"github.com/spf13/cobra"

	"github.com/PostHog/exported-recordings-analyzer/internal/config"
	"github.com/PostHog/exported-recordings-analyzer/internal/logging"
	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/stream"
)

// NewScanCommand creates the multi-file directory analysis command.
func NewScanCommand() *cobra.Command {
	var (
		configPath string
		collectRaw bool
		plotPath   string
	)

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Analyze a directory of newline-delimited export files",
		Long: `Scan analyzes every file in a directory of newline-delimited exports
(e.g. an object-storage download), in lexicographic file order. Each line is
an independent JSON object; lines that fail to decode are recorded in the
report and never abort the run.`,
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

			maxLineBytes, err := cfg.MaxLineBytes()
			if err != nil {
				return err
			}

			logger := logging.New(cfg.Logging)
			classifier := analysis.NewClassifier(logger)

			var collector *stream.RawCollector
			if cfg.Analyze.CollectRaw {
				collector = stream.NewRawCollector()
			}

			result, err := stream.NewDirDriver(classifier, collector, maxLineBytes).AnalyzeDir(args[0])
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
