package rrweb

// Event is one timestamped record in the recording stream. Only the fields
// the analyzer consumes are declared; Data keeps its decoded JSON shape so
// unrecognized payloads survive untouched.
//
// Decode events with a json.Decoder in UseNumber mode so that nested numbers
// re-encode byte-identically when sizes are measured.
type Event struct {
	WindowID  string   `json:"windowId,omitempty"`
	Type      int      `json:"type"`
	Timestamp int64    `json:"timestamp"`
	Delay     *float64 `json:"delay,omitempty"`
	Data      any      `json:"data,omitempty"`
}

// DataMap returns the event payload as a JSON object, or nil when the
// payload is absent or has another shape.
func (e *Event) DataMap() map[string]any {
	m, ok := e.Data.(map[string]any)
	if !ok {
		return nil
	}

	return m
}
