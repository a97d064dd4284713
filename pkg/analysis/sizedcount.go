package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
)

// SizedCount pairs an occurrence count with the total serialized byte size
// of those occurrences. It is an immutable value forming a commutative
// monoid under Combine with SizedCount{} as identity.
type SizedCount struct {
	Count int `json:"count"`
	Size  int `json:"size"`
}

// Add returns a copy with one more occurrence of the given byte size.
func (sc SizedCount) Add(size int) SizedCount {
	return SizedCount{Count: sc.Count + 1, Size: sc.Size + size}
}

// Combine returns the pairwise sum of both fields.
func (sc SizedCount) Combine(other SizedCount) SizedCount {
	return SizedCount{Count: sc.Count + other.Count, Size: sc.Size + other.Size}
}

// String renders the count with an IEC-formatted size, e.g. "3 (1.5 KiB)".
func (sc SizedCount) String() string {
	return fmt.Sprintf("%d (%s)", sc.Count, humanize.IBytes(uint64(sc.Size)))
}

// combineSizedCountMaps merges two maps key-wise via SizedCount.Combine,
// treating an absent key as the identity.
func combineSizedCountMaps(left, right map[string]SizedCount) map[string]SizedCount {
	out := make(map[string]SizedCount, len(left)+len(right))

	for key, sc := range left {
		out[key] = sc
	}

	for key, sc := range right {
		out[key] = out[key].Combine(sc)
	}

	return out
}

// SerializedSize returns the byte length of the canonical compact JSON
// encoding of v. It is the size measure used throughout the aggregate.
// Values originate from decoded JSON and always re-encode; a value that
// does not is measured as zero.
func SerializedSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}

	return len(data)
}
