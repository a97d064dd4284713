package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

const sampleExport = `{
	"version": 1,
	"data": {
		"id": "0198xyz",
		"person": {"properties": {"email": "someone@example.com"}},
		"snapshots": [
			[
				{"type": 2, "timestamp": 1000, "data": {"node": {"type": 0}}}
			],
			[
				{"type": 3, "timestamp": 2000, "data": {"source": 3, "id": 1, "x": 0, "y": 120}},
				{"type": 4, "timestamp": 3000, "data": {"href": "https://example.com"}}
			]
		]
	},
	"trailing": true
}`

func TestExportAnalyzeStreamsBatches(t *testing.T) {
	driver := NewExportDriver(analysis.NewClassifier(nil), nil)

	a, err := driver.Analyze(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	want := map[string]int{"FullSnapshot": 1, "IncrementalSnapshot": 1, "Meta": 1}
	for name, count := range want {
		if a.MessageTypeCounts[name] != count {
			t.Errorf("%s count = %d, want %d", name, a.MessageTypeCounts[name], count)
		}
	}

	if *a.FirstTimestamp != 1000 || *a.LastTimestamp != 3000 {
		t.Errorf("window = [%d, %d], want [1000, 3000]", *a.FirstTimestamp, *a.LastTimestamp)
	}

	if len(a.FullSnapshotTimestamps) != 1 || a.FullSnapshotTimestamps[0] != 1000 {
		t.Errorf("full snapshot timestamps = %v", a.FullSnapshotTimestamps)
	}

	if a.IncrementalSourceCounts["Scroll"].Count != 1 {
		t.Errorf("Scroll = %+v", a.IncrementalSourceCounts["Scroll"])
	}
}

func TestExportAnalyzeEmptySnapshots(t *testing.T) {
	driver := NewExportDriver(analysis.NewClassifier(nil), nil)

	a, err := driver.Analyze(strings.NewReader(`{"data":{"snapshots":[]}}`))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(a.MessageTypeCounts) != 0 {
		t.Errorf("counts = %v, want empty", a.MessageTypeCounts)
	}
}

func TestExportAnalyzeMissingSnapshots(t *testing.T) {
	driver := NewExportDriver(analysis.NewClassifier(nil), nil)

	cases := []string{
		`{"data":{"id":"x"}}`,
		`{"other":{}}`,
		`{"data":{"snapshots":"nope"}}`,
	}

	for _, doc := range cases {
		_, err := driver.Analyze(strings.NewReader(doc))
		if !errors.Is(err, ErrNoSnapshots) {
			t.Errorf("doc %s: err = %v, want ErrNoSnapshots", doc, err)
		}
	}
}

func TestExportAnalyzeMutationGuardAborts(t *testing.T) {
	driver := NewExportDriver(analysis.NewClassifier(nil), nil)

	doc := `{"data":{"snapshots":[[{"type":3,"timestamp":1,"data":{"source":0,"nope":1}}]]}}`

	_, err := driver.Analyze(strings.NewReader(doc))
	if !errors.Is(err, analysis.ErrUnexpectedMutationKeys) {
		t.Errorf("err = %v, want ErrUnexpectedMutationKeys", err)
	}
}

func TestExportAnalyzeFeedsCollector(t *testing.T) {
	collector := NewRawCollector()
	driver := NewExportDriver(analysis.NewClassifier(nil), collector)

	_, err := driver.Analyze(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if collector.Len() != 3 {
		t.Errorf("collected %d events, want 3", collector.Len())
	}
}

func TestForEachSnapshotOrder(t *testing.T) {
	var timestamps []int64

	err := ForEachSnapshot(strings.NewReader(sampleExport), func(ev *rrweb.Event) error {
		timestamps = append(timestamps, ev.Timestamp)

		return nil
	})
	if err != nil {
		t.Fatalf("for each: %v", err)
	}

	want := []int64{1000, 2000, 3000}
	if len(timestamps) != len(want) {
		t.Fatalf("timestamps = %v, want %v", timestamps, want)
	}

	for i := range want {
		if timestamps[i] != want[i] {
			t.Errorf("timestamps = %v, want %v", timestamps, want)

			break
		}
	}
}

func TestForEachSnapshotStopsOnCallbackError(t *testing.T) {
	sentinel := errors.New("stop")
	calls := 0

	err := ForEachSnapshot(strings.NewReader(sampleExport), func(*rrweb.Event) error {
		calls++

		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want sentinel", err)
	}

	if calls != 1 {
		t.Errorf("callback ran %d times after erroring", calls)
	}
}
