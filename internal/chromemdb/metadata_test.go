package chromemdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: "abc", want: `"abc"`},
		{value: "1", want: `"1"`},
		{value: 1, want: `1`},
		{value: 1.5, want: `1.5`},
		{value: true, want: `true`},
		{value: nil, want: `null`},
		{value: "<a&b>", want: `"<a&b>"`},
		{value: []string{"x", "y"}, want: `["x","y"]`},
	}

	for _, tt := range tests {
		got, err := encodeValue(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEncodeValue_Unsupported(t *testing.T) {
	_, err := encodeValue(make(chan int))
	assert.Error(t, err)
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, "abc", decodeValue(`"abc"`))
	assert.Equal(t, float64(1), decodeValue(`1`))
	assert.Equal(t, true, decodeValue(`true`))
	assert.Nil(t, decodeValue(`null`))

	// Written by another client.
	assert.Equal(t, "plain text", decodeValue("plain text"))
}

func TestMetadata_RoundTrip(t *testing.T) {
	in := map[string]any{
		"doc_id":   "d-1",
		"page":     3,
		"score":    0.25,
		"enabled":  false,
		"document": "same",
	}

	encoded, err := encodeMetadata(in)
	require.NoError(t, err)
	assert.Equal(t, `"d-1"`, encoded["doc_id"])
	assert.Equal(t, `3`, encoded["page"])

	out := decodeMetadata(encoded)
	assert.Equal(t, "d-1", out["doc_id"])
	assert.Equal(t, float64(3), out["page"])
	assert.Equal(t, 0.25, out["score"])
	assert.Equal(t, false, out["enabled"])
}

func TestMetadata_LargeIntegers(t *testing.T) {
	const big = int64(1)<<53 + 1

	encoded, err := encodeValue(big)
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", encoded)

	// Filters compare the stored text, which keeps every digit.
	filter, err := encodeValue(big)
	require.NoError(t, err)
	assert.Equal(t, encoded, filter)

	neighbour, err := encodeValue(big - 1)
	require.NoError(t, err)
	assert.NotEqual(t, encoded, neighbour)

	// Decoding goes through float64 and rounds.
	assert.Equal(t, float64(1<<53), decodeValue(encoded))
}

func TestMetadata_Nil(t *testing.T) {
	encoded, err := encodeMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, encoded)

	out := decodeMetadata(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestEncodeMetadata_ErrorNamesField(t *testing.T) {
	_, err := encodeMetadata(map[string]any{"bad": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}
