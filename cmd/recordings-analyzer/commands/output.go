package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/PostHog/exported-recordings-analyzer/internal/config"
	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/report"
	"github.com/PostHog/exported-recordings-analyzer/pkg/stream"
)

// emitOutputs renders the report and writes the optional side artifacts:
// the decompressed raw events file and the addition-size chart.
func emitOutputs(
	w io.Writer,
	cfg *config.Config,
	result *analysis.Analysis,
	collector *stream.RawCollector,
	inputPath string,
	plotPath string,
) error {
	report.NewRenderer(cfg.Report.Top, cfg.Report.Color).Render(w, result)

	if collector != nil {
		err := writeSidecar(collector, inputPath, cfg.Analyze.CompressRaw)
		if err != nil {
			return err
		}
	}

	if plotPath != "" && len(result.AdditionSizes) > 0 {
		err := writePlot(plotPath, result.AdditionSizes)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeSidecar(collector *stream.RawCollector, inputPath string, compressed bool) error {
	path := stream.SidecarPath(inputPath, compressed)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raw events artifact: %w", err)
	}
	defer f.Close()

	if compressed {
		return collector.WriteLZ4(f)
	}

	return collector.WriteJSON(f)
}

func writePlot(path string, sizes []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()

	return report.WriteAdditionSizePlot(f, sizes)
}
