package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
	"github.com/PostHog/exported-recordings-analyzer/pkg/stream"
)

// convertedSnapshot is one row of the timestamp conversion output.
type convertedSnapshot struct {
	Type      int      `json:"type"`
	Timestamp int64    `json:"timestamp"`
	Time      string   `json:"time"`
	Delay     *float64 `json:"delay,omitempty"`
	DelayTime string   `json:"delayTime,omitempty"`
	Timedelta string   `json:"timedelta,omitempty"`
}

// NewTimesCommand creates the timestamp conversion command.
func NewTimesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "times <recording.json>",
		Short: "Convert snapshot timestamps to ISO-8601",
		Long: `Times streams one exported recording document and prints, per snapshot,
the epoch-millisecond timestamp converted to ISO-8601 UTC, plus the capture
delay and its delayed wall-clock time where present.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer f.Close()

			var converted []convertedSnapshot

			err = stream.ForEachSnapshot(f, func(ev *rrweb.Event) error {
				converted = append(converted, convertSnapshot(ev))

				return nil
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			encodeErr := enc.Encode(converted)
			if encodeErr != nil {
				return fmt.Errorf("encode converted snapshots: %w", encodeErr)
			}

			return nil
		},
	}
}

func convertSnapshot(ev *rrweb.Event) convertedSnapshot {
	out := convertedSnapshot{
		Type:      ev.Type,
		Timestamp: ev.Timestamp,
		Time:      isoMillis(float64(ev.Timestamp)),
	}

	if ev.Delay != nil {
		out.Delay = ev.Delay
		out.DelayTime = isoMillis(float64(ev.Timestamp) + *ev.Delay)
		out.Timedelta = formatTimedelta(*ev.Delay)
	}

	return out
}

// isoMillis renders an epoch-millisecond instant as second-precision
// ISO-8601 UTC.
func isoMillis(ms float64) string {
	seconds := int64(math.Trunc(ms / 1000))

	return time.Unix(seconds, 0).UTC().Format("2006-01-02T15:04:05") + "Z"
}

// formatTimedelta renders a millisecond delay as "N minutes and M seconds".
func formatTimedelta(delayMillis float64) string {
	total := math.Abs(delayMillis / 1000)
	minutes := int(total / 60)
	seconds := int(math.Mod(total, 60))

	return fmt.Sprintf("%d minutes and %d seconds", minutes, seconds)
}
