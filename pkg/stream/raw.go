package stream

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/PostHog/exported-recordings-analyzer/pkg/rrweb"
)

// RawCollector gathers every event a driver sees, after decompression and
// independent of analysis outcome. It feeds the optional side artifact of
// decompressed events and never influences Analysis contents.
//
// A nil *RawCollector is a valid no-op, so drivers call Collect
// unconditionally.
type RawCollector struct {
	events []rrweb.Event
}

// NewRawCollector creates an enabled collector.
func NewRawCollector() *RawCollector {
	return &RawCollector{}
}

// Collect appends one event. No-op on a nil collector.
func (c *RawCollector) Collect(ev *rrweb.Event) {
	if c == nil {
		return
	}

	c.events = append(c.events, *ev)
}

// Len reports how many events were collected. Zero on a nil collector.
func (c *RawCollector) Len() int {
	if c == nil {
		return 0
	}

	return len(c.events)
}

// WriteJSON writes the collected events as an indented JSON array.
func (c *RawCollector) WriteJSON(w io.Writer) error {
	events := c.events
	if events == nil {
		events = []rrweb.Event{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(events)
	if err != nil {
		return fmt.Errorf("encode raw events: %w", err)
	}

	return nil
}

// WriteLZ4 writes the JSON array through an LZ4 frame writer.
func (c *RawCollector) WriteLZ4(w io.Writer) error {
	zw := lz4.NewWriter(w)

	err := c.WriteJSON(zw)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("close lz4 writer: %w", closeErr)
	}

	return nil
}

// SidecarPath derives the deterministic side-artifact path for an input.
func SidecarPath(input string, compressed bool) string {
	path := input + ".decompressed.json"
	if compressed {
		path += ".lz4"
	}

	return path
}
