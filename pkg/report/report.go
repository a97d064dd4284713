// Package report renders a finished Analysis as a human-readable terminal
// summary: session timing, per-category tables, malformed-line detail, and a
// top-N merged size view across every size-keyed metric.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
)

// DefaultTopN is how many entries the merged size views show.
const DefaultTopN = 10

// Renderer formats Analysis values. The zero value renders top 10 without color.
type Renderer struct {
	TopN     int
	Colorize bool
}

// NewRenderer creates a renderer showing the top topN entries per size view.
func NewRenderer(topN int, colorize bool) *Renderer {
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &Renderer{TopN: topN, Colorize: colorize}
}

// Render writes the full report for a to w.
func (r *Renderer) Render(w io.Writer, a *analysis.Analysis) {
	r.renderSession(w, a)
	r.renderMessageTypes(w, a)
	r.renderIncrementalSources(w, a)
	r.renderMutations(w, a)
	r.renderUnterminatedLines(w, a)
	r.renderPlugins(w, a)
	r.renderTopMutations(w, a)
}

func (r *Renderer) heading(w io.Writer, text string) {
	if r.Colorize {
		color.New(color.FgCyan, color.Bold).Fprintf(w, "\n%s\n", text)

		return
	}

	fmt.Fprintf(w, "\n%s\n", text)
}

func (r *Renderer) renderSession(w io.Writer, a *analysis.Analysis) {
	r.heading(w, "Session")

	if a.FirstTimestamp == nil || a.LastTimestamp == nil {
		fmt.Fprintln(w, "no timestamped events")

		return
	}

	start := time.UnixMilli(*a.FirstTimestamp).UTC()
	duration := time.Duration(*a.LastTimestamp-*a.FirstTimestamp) * time.Millisecond

	fmt.Fprintf(w, "start:    %s\n", start.Format(time.RFC3339))
	fmt.Fprintf(w, "duration: %s\n", duration)

	if len(a.FullSnapshotTimestamps) > 0 {
		fmt.Fprintln(w, "full snapshots:")

		for _, ts := range a.FullSnapshotTimestamps {
			at := time.UnixMilli(ts).UTC()
			offset := time.Duration(ts-*a.FirstTimestamp) * time.Millisecond
			fmt.Fprintf(w, "  %s (after %s)\n", at.Format(time.RFC3339), offset)
		}
	}
}

func (r *Renderer) renderMessageTypes(w io.Writer, a *analysis.Analysis) {
	if len(a.MessageTypeCounts) == 0 {
		return
	}

	r.heading(w, "Message types")

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Type", "Count"})

	for _, name := range sortedKeys(a.MessageTypeCounts) {
		t.AppendRow(table.Row{name, a.MessageTypeCounts[name]})
	}

	fmt.Fprintln(w, t.Render())
}

func (r *Renderer) renderIncrementalSources(w io.Writer, a *analysis.Analysis) {
	if len(a.IncrementalSourceCounts) == 0 {
		return
	}

	r.heading(w, "Incremental snapshot sources")
	fmt.Fprintln(w, sizedCountTable("Source", a.IncrementalSourceCounts))
}

func (r *Renderer) renderMutations(w io.Writer, a *analysis.Analysis) {
	r.heading(w, "Mutations")

	fmt.Fprintf(w, "removals: %s\n", a.MutationRemovalCount)
	fmt.Fprintf(w, "texts:    %s\n", a.TextMutationCount)
	fmt.Fprintf(w, "iframes attached: %d\n", a.IsAttachIFrameCount)

	if len(a.MutationAdditionCounts) > 0 {
		fmt.Fprintln(w, "additions by node type:")
		fmt.Fprintln(w, sizedCountTable("Node type", a.MutationAdditionCounts))
	}

	if len(a.AdditionSizes) > 0 {
		dist := summarizeSizes(a.AdditionSizes)
		fmt.Fprintf(w, "addition sizes: n=%d mean=%s median=%s p95=%s max=%s\n",
			dist.Count,
			humanize.IBytes(uint64(dist.Mean)),
			humanize.IBytes(uint64(dist.Median)),
			humanize.IBytes(uint64(dist.P95)),
			humanize.IBytes(uint64(dist.Max)))
	}

	if len(a.IndividualMutationAttributeCounts) > 0 {
		fmt.Fprintln(w, "attribute changes by name:")
		fmt.Fprintln(w, sizedCountTable("Attribute", a.IndividualMutationAttributeCounts))
	}

	if len(a.GroupedMutationAttributeCounts) > 0 {
		// Attribute mutations arrive in arrays; this groups the attributes
		// that change together, sized by the whole batch.
		fmt.Fprintln(w, "attributes changed together:")
		fmt.Fprintln(w, sizedCountTable("Attributes", a.GroupedMutationAttributeCounts))
	}
}

func (r *Renderer) renderUnterminatedLines(w io.Writer, a *analysis.Analysis) {
	r.heading(w, fmt.Sprintf("Unterminated lines (%d)", len(a.UnterminatedLines)))

	if len(a.UnterminatedLines) == 0 {
		return
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "Line", "Tail"})

	for _, line := range a.UnterminatedLines {
		t.AppendRow(table.Row{line.SourceID, line.LineIndex, line.LineTail})
	}

	fmt.Fprintln(w, t.Render())
}

func (r *Renderer) renderPlugins(w io.Writer, a *analysis.Analysis) {
	if len(a.PluginCounts) > 0 {
		r.heading(w, "Plugins")
		fmt.Fprintln(w, sizedCountTable("Plugin", a.PluginCounts))
	}

	if len(a.ConsoleLogCounts) > 0 {
		r.heading(w, fmt.Sprintf("Console logs (top %d)", r.TopN))

		for _, entry := range topSized(a.ConsoleLogCounts, r.TopN) {
			fmt.Fprintf(w, "  %s: %s\n", entry.Key, entry.Value)
		}
	}
}

// renderTopMutations merges every mutation size map with the scalar rollups
// and prints the heaviest entries.
func (r *Renderer) renderTopMutations(w io.Writer, a *analysis.Analysis) {
	merged := make(map[string]analysis.SizedCount)

	for key, sc := range a.MutationAdditionCounts {
		merged[key] = sc
	}

	for key, sc := range a.GroupedMutationAttributeCounts {
		merged[key] = merged[key].Combine(sc)
	}

	for key, sc := range a.IndividualMutationAttributeCounts {
		merged[key] = merged[key].Combine(sc)
	}

	merged["removal"] = merged["removal"].Combine(a.MutationRemovalCount)
	merged["text"] = merged["text"].Combine(a.TextMutationCount)

	r.heading(w, fmt.Sprintf("Top %d mutations by size", r.TopN))

	for _, entry := range topSized(merged, r.TopN) {
		fmt.Fprintf(w, "  %s: %s\n", entry.Key, entry.Value)
	}
}

// sizedEntry is one row of a size-ordered view.
type sizedEntry struct {
	Key   string
	Value analysis.SizedCount
}

// topSized returns the n entries with the largest size, descending. Ties
// break by key so the output is deterministic.
func topSized(candidates map[string]analysis.SizedCount, n int) []sizedEntry {
	entries := make([]sizedEntry, 0, len(candidates))
	for key, sc := range candidates {
		entries = append(entries, sizedEntry{Key: key, Value: sc})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value.Size != entries[j].Value.Size {
			return entries[i].Value.Size > entries[j].Value.Size
		}

		return entries[i].Key < entries[j].Key
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	return entries
}

func sizedCountTable(label string, counts map[string]analysis.SizedCount) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{label, "Count", "Size"})

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		sc := counts[key]
		t.AppendRow(table.Row{key, sc.Count, humanize.IBytes(uint64(sc.Size))})
	}

	return t.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
