package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
)

func TestTopSizedOrdersBySizeDescending(t *testing.T) {
	counts := map[string]analysis.SizedCount{
		"small":  {Count: 10, Size: 5},
		"large":  {Count: 1, Size: 500},
		"medium": {Count: 3, Size: 50},
	}

	entries := topSized(counts, 10)

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Key
	}

	want := []string{"large", "medium", "small"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestTopSizedTiesBreakByKey(t *testing.T) {
	counts := map[string]analysis.SizedCount{
		"b": {Count: 1, Size: 10},
		"a": {Count: 1, Size: 10},
		"c": {Count: 1, Size: 10},
	}

	entries := topSized(counts, 10)

	if entries[0].Key != "a" || entries[1].Key != "b" || entries[2].Key != "c" {
		t.Errorf("tie order = %v", entries)
	}
}

func TestTopSizedTruncates(t *testing.T) {
	counts := map[string]analysis.SizedCount{
		"a": {Size: 1}, "b": {Size: 2}, "c": {Size: 3}, "d": {Size: 4},
	}

	entries := topSized(counts, 2)

	if len(entries) != 2 || entries[0].Key != "d" || entries[1].Key != "c" {
		t.Errorf("top 2 = %v", entries)
	}
}

func TestRenderEmptyAnalysis(t *testing.T) {
	var buf bytes.Buffer

	NewRenderer(0, false).Render(&buf, analysis.NewAnalysis())

	out := buf.String()

	if !strings.Contains(out, "no timestamped events") {
		t.Errorf("missing empty-session notice:\n%s", out)
	}

	if !strings.Contains(out, "Unterminated lines (0)") {
		t.Errorf("missing unterminated-line heading:\n%s", out)
	}
}

func TestRenderFullReport(t *testing.T) {
	a := analysis.NewAnalysis()
	a.ObserveTimestamp(1700000000000)
	a.ObserveTimestamp(1700000065000)
	a.FullSnapshotTimestamps = []int64{1700000000000}
	a.MessageTypeCounts["FullSnapshot"] = 1
	a.MessageTypeCounts["IncrementalSnapshot"] = 41
	a.IncrementalSourceCounts["Mutation"] = analysis.SizedCount{Count: 12, Size: 4096}
	a.MutationAdditionCounts["Element"] = analysis.SizedCount{Count: 8, Size: 3000}
	a.AdditionSizes = []int{100, 200, 2700}
	a.IndividualMutationAttributeCounts["style"] = analysis.SizedCount{Count: 4, Size: 600}
	a.GroupedMutationAttributeCounts["class---style"] = analysis.SizedCount{Count: 2, Size: 900}
	a.PluginCounts["rrweb/console@1"] = analysis.SizedCount{Count: 5, Size: 700}
	a.ConsoleLogCounts["error---boom"] = analysis.SizedCount{Count: 5, Size: 700}
	a.MutationRemovalCount = analysis.SizedCount{Count: 3, Size: 120}
	a.TextMutationCount = analysis.SizedCount{Count: 2, Size: 40}
	a.UnterminatedLines = []analysis.UnterminatedLine{
		{SourceID: "2023-01-01.jsonl", LineIndex: 7, LineTail: `"data":{"sou`},
	}

	var buf bytes.Buffer

	NewRenderer(10, false).Render(&buf, a)

	out := buf.String()

	for _, want := range []string{
		"start:    2023-11-14T22:13:20Z",
		"duration: 1m5s",
		"Message types",
		"FullSnapshot",
		"Incremental snapshot sources",
		"Mutation",
		"removals: 3 (120 B)",
		"additions by node type:",
		"addition sizes: n=3",
		"attribute changes by name:",
		"class---style",
		"Unterminated lines (1)",
		"2023-01-01.jsonl",
		"rrweb/console@1",
		"error---boom",
		"Top 10 mutations by size",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTopMutationsMergesRollups(t *testing.T) {
	a := analysis.NewAnalysis()
	a.MutationRemovalCount = analysis.SizedCount{Count: 1, Size: 9000}
	a.MutationAdditionCounts["Element"] = analysis.SizedCount{Count: 1, Size: 10}

	var buf bytes.Buffer

	NewRenderer(1, false).Render(&buf, a)

	out := buf.String()

	if !strings.Contains(out, "Top 1 mutations by size") {
		t.Fatalf("missing heading:\n%s", out)
	}

	// Only the removal rollup makes the top-1 cut.
	topSection := out[strings.Index(out, "Top 1 mutations"):]
	if !strings.Contains(topSection, "removal:") {
		t.Errorf("removal rollup not in top view:\n%s", topSection)
	}

	if strings.Contains(topSection, "Element:") {
		t.Errorf("top view not truncated:\n%s", topSection)
	}
}

func TestNewRendererDefaults(t *testing.T) {
	r := NewRenderer(0, false)
	if r.TopN != DefaultTopN {
		t.Errorf("TopN = %d, want %d", r.TopN, DefaultTopN)
	}
}
