// Package stream contains the two ingestion drivers: the whole-document
// export reader and the multi-file line scanner. Both fold raw events
// through the classifier into per-unit Analysis values and combine those
// into a single total, so callers see one aggregate regardless of how the
// input was partitioned.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

// ErrNoSnapshots indicates the export document carries no data.snapshots array.
var ErrNoSnapshots = errors.New("export document has no data.snapshots array")

// ExportDriver analyzes one exported recording: a single JSON document whose
// data.snapshots path holds an array of event-batch arrays. The document is
// streamed batch by batch and never materialized whole.
type ExportDriver struct {
	classifier *analysis.Classifier
	collector  *RawCollector
}

// NewExportDriver creates an export driver. collector may be nil to disable
// the raw-event side channel.
func NewExportDriver(classifier *analysis.Classifier, collector *RawCollector) *ExportDriver {
	return &ExportDriver{classifier: classifier, collector: collector}
}

// Analyze streams the export document from r and returns the combined
// Analysis over all batches.
func (d *ExportDriver) Analyze(r io.Reader) (*analysis.Analysis, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	err := seekSnapshots(dec)
	if err != nil {
		return nil, err
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read snapshots array: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: snapshots is not an array", ErrNoSnapshots)
	}

	total := analysis.NewAnalysis()

	for dec.More() {
		var batch []rrweb.Event

		decodeErr := dec.Decode(&batch)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode snapshot batch: %w", decodeErr)
		}

		batchAnalysis := analysis.NewAnalysis()

		for i := range batch {
			ev := &batch[i]

			consumeErr := d.classifier.Consume(batchAnalysis, ev)
			if consumeErr != nil {
				return nil, consumeErr
			}

			d.collector.Collect(ev)
		}

		total = total.Combine(batchAnalysis)
	}

	return total, nil
}

// ForEachSnapshot streams the export document from r and calls fn once per
// event, in document order, without building an Analysis. Used by tooling
// that needs the raw stream, such as timestamp conversion.
func ForEachSnapshot(r io.Reader, fn func(ev *rrweb.Event) error) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	err := seekSnapshots(dec)
	if err != nil {
		return err
	}

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read snapshots array: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("%w: snapshots is not an array", ErrNoSnapshots)
	}

	for dec.More() {
		var batch []rrweb.Event

		decodeErr := dec.Decode(&batch)
		if decodeErr != nil {
			return fmt.Errorf("decode snapshot batch: %w", decodeErr)
		}

		for i := range batch {
			fnErr := fn(&batch[i])
			if fnErr != nil {
				return fnErr
			}
		}
	}

	return nil
}

// seekSnapshots advances the decoder to the value of the data.snapshots key,
// skipping every sibling value without materializing it.
func seekSnapshots(dec *json.Decoder) error {
	err := seekKey(dec, "data")
	if err != nil {
		return err
	}

	return seekKey(dec, "snapshots")
}

// seekKey expects the decoder to be positioned at an object and advances it
// to the value of the given key.
func seekKey(dec *json.Decoder, key string) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected an object around %q", ErrNoSnapshots, key)
	}

	for dec.More() {
		nameTok, nameErr := dec.Token()
		if nameErr != nil {
			return fmt.Errorf("read document: %w", nameErr)
		}

		name, ok := nameTok.(string)
		if !ok {
			return fmt.Errorf("%w: malformed object key", ErrNoSnapshots)
		}

		if name == key {
			return nil
		}

		skipErr := skipValue(dec)
		if skipErr != nil {
			return fmt.Errorf("skip %q: %w", name, skipErr)
		}
	}

	return fmt.Errorf("%w: key %q not found", ErrNoSnapshots, key)
}

// skipValue consumes exactly one JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		for dec.More() {
			_, keyErr := dec.Token()
			if keyErr != nil {
				return keyErr
			}

			valueErr := skipValue(dec)
			if valueErr != nil {
				return valueErr
			}
		}
	case '[':
		for dec.More() {
			valueErr := skipValue(dec)
			if valueErr != nil {
				return valueErr
			}
		}
	}

	_, err = dec.Token() // closing delimiter

	return err
}
