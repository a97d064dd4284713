// Package decompress normalizes snapshot payload fields to structured form.
//
// The capture client deflates large payloads with zlib and ships the result
// as a string with one byte per character. Fields that arrive already
// structured (or absent) pass through unchanged, so callers can apply Value
// unconditionally before any size accounting.
package decompress

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
)

// Value normalizes a payload field. Structured values and nil are returned
// as-is; strings are treated as compressed byte blobs, inflated, and parsed
// as JSON.
func Value(v any) (any, error) {
	switch blob := v.(type) {
	case nil:
		return nil, nil
	case string:
		return inflate(blob)
	default:
		return v, nil
	}
}

// inflate decodes a byte-per-character compressed string into structured data.
func inflate(blob string) (any, error) {
	raw := make([]byte, 0, len(blob))
	for _, r := range blob {
		raw = append(raw, byte(r))
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open compressed payload: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()

	var out any

	decodeErr := dec.Decode(&out)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode inflated payload: %w", decodeErr)
	}

	return out, nil
}
