package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PostHog/exported-recordings-analyzer/pkg/decompress"
	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

// ErrUnexpectedMutationKeys signals schema drift in mutation payloads. It is
// deliberately fatal: a new mutation kind upstream must alert the operator
// instead of silently under-counting. Never downgrade this to a skip.
var ErrUnexpectedMutationKeys = errors.New("unexpected mutation payload keys")

// recognizedMutationKeys is the closed set of keys a mutation payload may carry.
var recognizedMutationKeys = map[string]struct{}{
	"removes":        {},
	"adds":           {},
	"attributes":     {},
	"texts":          {},
	"isAttachIframe": {},
	"updates":        {},
	"source":         {},
}

// compressibleMutationKeys are the sub-fields the capture client may ship as
// compressed blobs; they are normalized in place before any size accounting.
var compressibleMutationKeys = []string{"removes", "adds", "attributes", "texts"}

// additionFingerprintLimit caps the serialized-node fallback fingerprint.
const additionFingerprintLimit = 300

// consumeMutation folds one Mutation-sourced payload into a. The payload map
// is mutated: compressed sub-fields are replaced by their structured form.
func (c *Classifier) consumeMutation(a *Analysis, data map[string]any) error {
	err := guardMutationKeys(data)
	if err != nil {
		return err
	}

	for _, key := range compressibleMutationKeys {
		raw, present := data[key]
		if !present {
			continue
		}

		plain, decompressErr := decompress.Value(raw)
		if decompressErr != nil {
			return fmt.Errorf("decompress mutation %s: %w", key, decompressErr)
		}

		data[key] = plain
	}

	if attached, ok := data["isAttachIframe"].(bool); ok && attached {
		a.IsAttachIFrameCount++
	}

	consumeRemoves(a, listField(data, "removes"))
	c.consumeAdds(a, listField(data, "adds"))
	consumeAttributes(a, listField(data, "attributes"))
	consumeTexts(a, listField(data, "texts"))

	return nil
}

// guardMutationKeys raises on any key outside the recognized mutation set,
// naming the offenders.
func guardMutationKeys(data map[string]any) error {
	var unexpected []string

	for key := range data {
		if _, ok := recognizedMutationKeys[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}

	if len(unexpected) == 0 {
		return nil
	}

	sort.Strings(unexpected)

	return fmt.Errorf("%w: %s", ErrUnexpectedMutationKeys, strings.Join(unexpected, ", "))
}

func consumeRemoves(a *Analysis, removes []any) {
	for _, entry := range removes {
		a.MutationRemovalCount = a.MutationRemovalCount.Add(SerializedSize(entry))
	}
}

// consumeAdds accumulates one entry per addition that carries a node
// sub-object. Mobile-sourced recordings omit the node; those entries are
// skipped without comment.
func (c *Classifier) consumeAdds(a *Analysis, adds []any) {
	for _, raw := range adds {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		node, ok := entry["node"].(map[string]any)
		if !ok {
			continue
		}

		code, _ := intField(node, "type")

		name, known := rrweb.NodeTypeName(code)
		if !known {
			c.logger.Warn("unknown mutation node type", "type", code)
		}

		size := SerializedSize(entry)
		a.MutationAdditionCounts[name] = a.MutationAdditionCounts[name].Add(size)
		a.AdditionSizes = append(a.AdditionSizes, size)

		fingerprint := additionFingerprint(node)
		a.MutationAdditionValueCounts[fingerprint] = a.MutationAdditionValueCounts[fingerprint].Add(size)
	}
}

// additionFingerprint groups added nodes by value: the node's text content
// when present, otherwise the first 300 characters of its compact
// serialization.
func additionFingerprint(node map[string]any) string {
	if text, ok := node["textContent"].(string); ok && text != "" {
		return text
	}

	serialized, err := json.Marshal(node)
	if err != nil {
		return ""
	}

	return truncateRunes(string(serialized), additionFingerprintLimit)
}

// consumeAttributes records two views of one attribute-change batch: a
// per-attribute-name view sized by each new value, and a co-occurrence view
// keyed by the sorted joined names of each entry, sized by the whole batch.
// The grouped view intentionally counts the batch size once per entry; that
// over-counting is an established characteristic of the metric.
func consumeAttributes(a *Analysis, batch []any) {
	batchSize := SerializedSize(batch)

	for _, raw := range batch {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		attrs, ok := entry["attributes"].(map[string]any)
		if !ok {
			// Mobile-sourced entries carry no attributes map.
			continue
		}

		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			valueSize := SerializedSize(attrs[name])
			a.IndividualMutationAttributeCounts[name] = a.IndividualMutationAttributeCounts[name].Add(valueSize)
		}

		grouped := strings.Join(names, fingerprintSeparator)
		a.GroupedMutationAttributeCounts[grouped] = a.GroupedMutationAttributeCounts[grouped].Add(batchSize)
	}
}

func consumeTexts(a *Analysis, texts []any) {
	for _, raw := range texts {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		value, _ := entry["value"].(string)
		a.TextMutationCount = a.TextMutationCount.Add(utf8.RuneCountInString(value))
	}
}

func listField(m map[string]any, key string) []any {
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}

	return list
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return string(runes[:limit])
}
