// Package analysis implements the aggregation core of the recordings
// analyzer: the mergeable Analysis aggregate, the serialized-size measure,
// and the event classifier that folds raw snapshot events into an Analysis.
//
// One Analysis is built per unit of work (one file, one batch) and folded
// into a running total with Combine. Combine is associative and commutative
// with NewAnalysis() as the two-sided identity, so totals are independent of
// how the input was partitioned. That property is what allows per-file work
// to run on parallel workers without locks.
package analysis

// UnterminatedLine records one input line that failed to decode. It never
// causes the stream to abort.
type UnterminatedLine struct {
	SourceID  string `json:"source_id"`
	LineIndex int    `json:"line_index"`
	LineTail  string `json:"line_tail"`
}

// Analysis is the aggregate accumulator for one unit of work. All fields
// combine monoidally: maps merge key-wise, scalars sum, slices concatenate,
// and timestamps widen with absent-is-absorbing min/max semantics.
type Analysis struct {
	MessageTypeCounts                 map[string]int        `json:"message_type_counts"`
	IncrementalSourceCounts           map[string]SizedCount `json:"incremental_snapshot_event_source_counts"`
	MutationAdditionCounts            map[string]SizedCount `json:"mutation_addition_counts"`
	MutationAdditionValueCounts       map[string]SizedCount `json:"mutation_addition_value_counts"`
	GroupedMutationAttributeCounts    map[string]SizedCount `json:"grouped_mutation_attributes_counts"`
	IndividualMutationAttributeCounts map[string]SizedCount `json:"individual_mutation_attributes_counts"`
	PluginCounts                      map[string]SizedCount `json:"plugin_counts"`
	ConsoleLogCounts                  map[string]SizedCount `json:"console_log_counts"`
	AdditionSizes                     []int                 `json:"addition_sizes"`
	MutationRemovalCount              SizedCount            `json:"mutation_removal_count"`
	TextMutationCount                 SizedCount            `json:"text_mutation_count"`
	UnterminatedLines                 []UnterminatedLine    `json:"unterminated_lines"`
	FirstTimestamp                    *int64                `json:"first_timestamp,omitempty"`
	LastTimestamp                     *int64                `json:"last_timestamp,omitempty"`
	FullSnapshotTimestamps            []int64               `json:"full_snapshot_timestamps"`
	IsAttachIFrameCount               int                   `json:"is_attach_iframe_count"`
}

// NewAnalysis returns the empty aggregate, the identity of Combine.
func NewAnalysis() *Analysis {
	return &Analysis{
		MessageTypeCounts:                 make(map[string]int),
		IncrementalSourceCounts:           make(map[string]SizedCount),
		MutationAdditionCounts:            make(map[string]SizedCount),
		MutationAdditionValueCounts:       make(map[string]SizedCount),
		GroupedMutationAttributeCounts:    make(map[string]SizedCount),
		IndividualMutationAttributeCounts: make(map[string]SizedCount),
		PluginCounts:                      make(map[string]SizedCount),
		ConsoleLogCounts:                  make(map[string]SizedCount),
	}
}

// Combine returns a new Analysis holding the merged contents of a and other.
// Neither input is modified.
func (a *Analysis) Combine(other *Analysis) *Analysis {
	out := NewAnalysis()

	out.MessageTypeCounts = combineCountMaps(a.MessageTypeCounts, other.MessageTypeCounts)
	out.IncrementalSourceCounts = combineSizedCountMaps(a.IncrementalSourceCounts, other.IncrementalSourceCounts)
	out.MutationAdditionCounts = combineSizedCountMaps(a.MutationAdditionCounts, other.MutationAdditionCounts)
	out.MutationAdditionValueCounts = combineSizedCountMaps(a.MutationAdditionValueCounts, other.MutationAdditionValueCounts)
	out.GroupedMutationAttributeCounts = combineSizedCountMaps(a.GroupedMutationAttributeCounts, other.GroupedMutationAttributeCounts)
	out.IndividualMutationAttributeCounts = combineSizedCountMaps(a.IndividualMutationAttributeCounts, other.IndividualMutationAttributeCounts)
	out.PluginCounts = combineSizedCountMaps(a.PluginCounts, other.PluginCounts)
	out.ConsoleLogCounts = combineSizedCountMaps(a.ConsoleLogCounts, other.ConsoleLogCounts)
	out.AdditionSizes = concatSlices(a.AdditionSizes, other.AdditionSizes)
	out.MutationRemovalCount = a.MutationRemovalCount.Combine(other.MutationRemovalCount)
	out.TextMutationCount = a.TextMutationCount.Combine(other.TextMutationCount)
	out.UnterminatedLines = concatSlices(a.UnterminatedLines, other.UnterminatedLines)
	out.FirstTimestamp = widenTimestamp(a.FirstTimestamp, other.FirstTimestamp, func(x, y int64) bool { return x < y })
	out.LastTimestamp = widenTimestamp(a.LastTimestamp, other.LastTimestamp, func(x, y int64) bool { return x > y })
	out.FullSnapshotTimestamps = concatSlices(a.FullSnapshotTimestamps, other.FullSnapshotTimestamps)
	out.IsAttachIFrameCount = a.IsAttachIFrameCount + other.IsAttachIFrameCount

	return out
}

// ObserveTimestamp widens the first/last timestamp window to include ts.
func (a *Analysis) ObserveTimestamp(ts int64) {
	if a.FirstTimestamp == nil || ts < *a.FirstTimestamp {
		first := ts
		a.FirstTimestamp = &first
	}

	if a.LastTimestamp == nil || ts > *a.LastTimestamp {
		last := ts
		a.LastTimestamp = &last
	}
}

// RecordUnterminatedLine appends one malformed-line record.
func (a *Analysis) RecordUnterminatedLine(line UnterminatedLine) {
	a.UnterminatedLines = append(a.UnterminatedLines, line)
}

func combineCountMaps(left, right map[string]int) map[string]int {
	out := make(map[string]int, len(left)+len(right))

	for key, n := range left {
		out[key] = n
	}

	for key, n := range right {
		out[key] += n
	}

	return out
}

// concatSlices concatenates without aliasing either input's backing array.
// Two empty inputs yield nil so that the identity law holds under deep
// equality for freshly-built aggregates.
func concatSlices[T any](left, right []T) []T {
	if len(left)+len(right) == 0 {
		return nil
	}

	out := make([]T, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)

	return out
}

// widenTimestamp picks a timestamp with absent-is-absorbing semantics: a nil
// side yields the other side, two values yield the one preferred by better.
// The result is a fresh pointer so combined aggregates share no state.
func widenTimestamp(left, right *int64, better func(x, y int64) bool) *int64 {
	var picked *int64

	switch {
	case left == nil:
		picked = right
	case right == nil:
		picked = left
	case better(*left, *right):
		picked = left
	default:
		picked = right
	}

	if picked == nil {
		return nil
	}

	value := *picked

	return &value
}
