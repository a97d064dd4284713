package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

const (
	// defaultMaxLineBytes bounds one scanned line. Exported lines can carry
	// whole snapshots inline, so the default is generous.
	defaultMaxLineBytes = 10 * 1024 * 1024

	// initialLineBuffer is the scanner's starting buffer size.
	initialLineBuffer = 1024 * 1024

	// lineTailRunes is how much of a malformed line is kept for the report.
	lineTailRunes = 20
)

// lineRecord is the shape of one newline-delimited export line.
type lineRecord struct {
	WindowID string        `json:"window_id"`
	Data     []rrweb.Event `json:"data"`
}

// DirDriver analyzes a directory of newline-delimited export files, one
// Analysis per file, combined in lexicographic file order. Lines that fail
// to decode are recorded as unterminated and never abort the run; only the
// mutation-schema guard does.
type DirDriver struct {
	classifier   *analysis.Classifier
	collector    *RawCollector
	maxLineBytes int
}

// NewDirDriver creates a directory driver. collector may be nil to disable
// the raw-event side channel; maxLineBytes <= 0 selects the default.
func NewDirDriver(classifier *analysis.Classifier, collector *RawCollector, maxLineBytes int) *DirDriver {
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}

	return &DirDriver{classifier: classifier, collector: collector, maxLineBytes: maxLineBytes}
}

// AnalyzeDir folds every regular file in dir, sorted by name, into one
// Analysis. Sorted iteration keeps the output deterministic even though
// Combine would tolerate any order.
func (d *DirDriver) AnalyzeDir(dir string) (*analysis.Analysis, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read recording directory: %w", err)
	}

	total := analysis.NewAnalysis()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileAnalysis, fileErr := d.analyzeFileAt(filepath.Join(dir, entry.Name()), entry.Name())
		if fileErr != nil {
			return nil, fileErr
		}

		total = total.Combine(fileAnalysis)
	}

	return total, nil
}

func (d *DirDriver) analyzeFileAt(path, sourceID string) (*analysis.Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording file: %w", err)
	}
	defer f.Close()

	return d.AnalyzeFile(f, sourceID)
}

// AnalyzeFile scans one newline-delimited source. Each line is an
// independent JSON object bearing its events at a "data" key; a line that
// fails to decode becomes an UnterminatedLine and scanning continues.
func (d *DirDriver) AnalyzeFile(r io.Reader, sourceID string) (*analysis.Analysis, error) {
	a := analysis.NewAnalysis()

	scanner := bufio.NewScanner(r)
	// The scanner's effective cap is max(cap(buf), max), so the initial
	// buffer must not exceed the configured bound.
	scanner.Buffer(make([]byte, min(initialLineBuffer, d.maxLineBytes)), d.maxLineBytes)

	lineIndex := 0

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			lineIndex++

			continue
		}

		var record lineRecord

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()

		err := dec.Decode(&record)
		if err != nil {
			a.RecordUnterminatedLine(analysis.UnterminatedLine{
				SourceID:  sourceID,
				LineIndex: lineIndex,
				LineTail:  lineTail(line),
			})
			lineIndex++

			continue
		}

		for i := range record.Data {
			ev := &record.Data[i]

			consumeErr := d.classifier.Consume(a, ev)
			if consumeErr != nil {
				return nil, fmt.Errorf("%s line %d: %w", sourceID, lineIndex, consumeErr)
			}

			d.collector.Collect(ev)
		}

		lineIndex++
	}

	err := scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		// An over-bound line cannot be resynchronized, so the rest of this
		// source is lost; everything scanned so far stays counted.
		a.RecordUnterminatedLine(analysis.UnterminatedLine{
			SourceID:  sourceID,
			LineIndex: lineIndex,
		})

		return a, nil
	}

	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sourceID, err)
	}

	return a, nil
}

// lineTail returns the last up-to-20 characters of a line.
func lineTail(line []byte) string {
	runes := []rune(string(line))
	if len(runes) <= lineTailRunes {
		return string(runes)
	}

	return string(runes[len(runes)-lineTailRunes:])
}
