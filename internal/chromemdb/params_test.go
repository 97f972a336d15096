package chromemdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		want    location
		wantErr error
	}{
		{name: "empty", raw: "", want: location{}},
		{name: "whitespace", raw: "   ", want: location{}},
		{name: "memory scheme", raw: "memory://", want: location{}},
		{name: "absolute file url", raw: "file:///var/lib/vectors", want: location{Path: "/var/lib/vectors"}},
		{name: "relative file url", raw: "file://./data", want: location{Path: "data"}},
		{name: "bare path", raw: "/tmp/vectors/../vectors", want: location{Path: "/tmp/vectors"}},
		{name: "home path", raw: "~/vectors", want: location{Path: filepath.Join(home, "vectors")}},
		{name: "compressed", raw: "file:///data?compress=true", want: location{Path: "/data", Compress: true}},
		{name: "compress disabled", raw: "/data?compress=false", want: location{Path: "/data"}},
		{name: "http scheme", raw: "http://localhost:6333", wantErr: ErrUnsupportedScheme},
		{name: "file without path", raw: "file://", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLocation(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_BadCompressValue(t *testing.T) {
	_, err := parseLocation("/data?compress=maybe")
	assert.Error(t, err)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "memory", location{}.String())
	assert.Equal(t, "/data", location{Path: "/data"}.String())
	assert.True(t, location{}.InMemory())
	assert.False(t, location{Path: "/data"}.InMemory())
}
