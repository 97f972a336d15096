package chromemdb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// chromem-go stores metadata as map[string]string. Each value is kept as its
// JSON text so the original type survives a round trip and equality filters
// never match across types ("1" and 1 encode differently).

// encodeValue returns the stored form of a metadata value.
func encodeValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder terminates every value with a newline.
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// decodeValue reverses encodeValue. Values that are not valid JSON were
// written by another client and are returned as plain strings.
//
// Numbers decode to float64, so integers beyond 2^53 come back rounded.
// The stored text stays exact, and equality filters compare stored text, so
// matching on such values is unaffected.
func decodeValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func encodeMetadata(metadata map[string]any) (map[string]string, error) {
	if metadata == nil {
		return nil, nil
	}

	result := make(map[string]string, len(metadata))
	for k, v := range metadata {
		encoded, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encoding metadata field %q: %w", k, err)
		}
		result[k] = encoded
	}
	return result, nil
}

func decodeMetadata(metadata map[string]string) map[string]any {
	result := make(map[string]any, len(metadata))
	for k, v := range metadata {
		result[k] = decodeValue(v)
	}
	return result
}
