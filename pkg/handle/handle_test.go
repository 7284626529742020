package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "tree handle", raw: "tree:42"},
		{name: "document handle", raw: "doc:550e8400-e29b-41d4-a716-446655440000"},
		{name: "handle with slashes", raw: "tree:bucket/some/prefix/"},
		{name: "handle with spaces", raw: "doc:My Documents/report.pdf"},
		{name: "empty string", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, h.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, h.IsZero())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Parse(h.String()) == h must hold for every handle the provider issues,
	// including ones that look nothing like paths.
	raws := []string{
		"tree:42",
		"doc:1",
		"content://com.example.provider/tree/primary%3ADocuments",
		"dir:bucket/a/b/c",
	}

	for _, raw := range raws {
		h, err := Parse(raw)
		require.NoError(t, err)

		back, err := Parse(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, back)
		assert.Equal(t, raw, back.String())
	}
}
