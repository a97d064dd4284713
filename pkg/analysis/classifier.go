package analysis

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/PostHog/exported-recordings-analyzer/pkg/decompress"
	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

// consoleLogPlugin is the plugin name under which the capture client ships
// captured console output.
const consoleLogPlugin = "rrweb/console@1"

// fingerprintSeparator joins the parts of derived grouping keys.
const fingerprintSeparator = "---"

// Classifier maps raw snapshot events onto an Analysis. It tolerates
// unknown and evolving payload shapes: unrecognized event types are counted
// under "Unknown", unrecognized incremental sources are logged and skipped,
// and only mutation payloads with unexpected keys abort the unit of work.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier. A nil logger discards skip diagnostics.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Classifier{logger: logger}
}

// Consume classifies one event and folds it into a. The event's payload is
// decompressed in place where the format calls for it, so ev reflects the
// structured form afterwards. The only error returned is the fatal
// mutation-schema guard; everything else degrades to a logged skip.
func (c *Classifier) Consume(a *Analysis, ev *rrweb.Event) error {
	a.ObserveTimestamp(ev.Timestamp)
	a.MessageTypeCounts[rrweb.EventTypeName(ev.Type)]++

	switch ev.Type {
	case rrweb.EventTypeFullSnapshot:
		return c.consumeFullSnapshot(a, ev)
	case rrweb.EventTypePlugin:
		c.consumePlugin(a, ev)
	case rrweb.EventTypeIncrementalSnapshot:
		return c.consumeIncremental(a, ev)
	}

	return nil
}

func (c *Classifier) consumeFullSnapshot(a *Analysis, ev *rrweb.Event) error {
	a.FullSnapshotTimestamps = append(a.FullSnapshotTimestamps, ev.Timestamp)

	data, err := decompress.Value(ev.Data)
	if err != nil {
		c.logger.Warn("full snapshot payload did not decompress", "error", err)

		return nil
	}

	ev.Data = data

	return nil
}

func (c *Classifier) consumePlugin(a *Analysis, ev *rrweb.Event) {
	data := ev.DataMap()
	if data == nil {
		return
	}

	plugin, ok := data["plugin"].(string)
	if !ok {
		return
	}

	size := SerializedSize(data)
	a.PluginCounts[plugin] = a.PluginCounts[plugin].Add(size)

	if plugin == consoleLogPlugin {
		if fingerprint, ok := consoleLogFingerprint(data); ok {
			a.ConsoleLogCounts[fingerprint] = a.ConsoleLogCounts[fingerprint].Add(size)
		}
	}
}

// consoleLogFingerprint derives "level---firstLogLine" from a console plugin
// payload. Payloads that do not carry a level and at least one log entry
// produce no fingerprint.
func consoleLogFingerprint(data map[string]any) (string, bool) {
	payload, ok := data["payload"].(map[string]any)
	if !ok {
		return "", false
	}

	level, ok := payload["level"].(string)
	if !ok {
		return "", false
	}

	entries, ok := payload["payload"].([]any)
	if !ok || len(entries) == 0 {
		return "", false
	}

	first, ok := entries[0].(string)
	if !ok {
		return "", false
	}

	firstLine, _, _ := strings.Cut(first, "\n")

	return level + fingerprintSeparator + firstLine, true
}

func (c *Classifier) consumeIncremental(a *Analysis, ev *rrweb.Event) error {
	data := ev.DataMap()
	if data == nil {
		c.logger.Warn("incremental snapshot without a payload object", "timestamp", ev.Timestamp)

		return nil
	}

	code, ok := intField(data, "source")
	if !ok {
		c.logger.Warn("incremental snapshot without a source", "timestamp", ev.Timestamp)

		return nil
	}

	source, known := rrweb.IncrementalSourceName(code)
	if !known {
		c.logger.Warn("unknown incremental snapshot source", "source", code, "timestamp", ev.Timestamp)

		return nil
	}

	// Mutations are analyzed first so the source size below reflects the
	// decompressed payload, never the compressed wire form.
	if code == rrweb.SourceMutation {
		err := c.consumeMutation(a, data)
		if err != nil {
			return err
		}
	}

	a.IncrementalSourceCounts[source] = a.IncrementalSourceCounts[source].Add(SerializedSize(data))

	return nil
}

// intField reads an integer-valued key from a decoded JSON object, accepting
// the json.Number and float64 shapes both decoder modes produce.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	case float64:
		return int(v), true
	}

	return 0, false
}
