package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

func handleOf(raw string) handle.Handle {
	return handle.Handle(raw)
}

func testProvider() *S3Provider {
	return &S3Provider{bucket: "media", rootPrefix: "photos/"}
}

func TestTreeHandle(t *testing.T) {
	p := testProvider()
	assert.Equal(t, "tree:media/photos/", p.TreeHandle().String())
}

func TestDecode(t *testing.T) {
	p := testProvider()

	tests := []struct {
		name     string
		raw      string
		kinds    []string
		wantKind string
		wantLoc  string
		wantErr  bool
	}{
		{
			name:     "tree handle",
			raw:      "tree:media/photos/",
			kinds:    []string{treePrefix},
			wantKind: treePrefix,
			wantLoc:  "photos/",
		},
		{
			name:     "directory handle",
			raw:      "dir:media/photos/2023/",
			kinds:    []string{treePrefix, dirPrefix},
			wantKind: dirPrefix,
			wantLoc:  "photos/2023/",
		},
		{
			name:     "document handle",
			raw:      "doc:media/photos/2023/a.jpg",
			kinds:    []string{docPrefix},
			wantKind: docPrefix,
			wantLoc:  "photos/2023/a.jpg",
		},
		{
			name:    "wrong bucket",
			raw:     "doc:other/photos/a.jpg",
			kinds:   []string{docPrefix},
			wantErr: true,
		},
		{
			name:    "wrong kind",
			raw:     "doc:media/photos/a.jpg",
			kinds:   []string{treePrefix},
			wantErr: true,
		},
		{
			name:    "no separator",
			raw:     "doc:media",
			kinds:   []string{docPrefix},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, loc, err := p.decode(handleOf(tt.raw), tt.kinds...)
			if tt.wantErr {
				require.Error(t, err)
				code, ok := provider.CodeOf(err)
				require.True(t, ok)
				assert.Equal(t, provider.ErrInvalidHandle, code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantLoc, loc)
		})
	}
}

func TestResolveTree_RejectsForeignPrefix(t *testing.T) {
	p := testProvider()

	_, err := p.ResolveTree(context.Background(), handleOf("tree:media/other/"))
	code, ok := provider.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, provider.ErrInvalidHandle, code)
}

func TestMimeTypeForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "notes/readme.txt", want: "text/plain"},
		{key: "config.json", want: "application/json"},
		{key: "photos/a.jpg", want: "image/jpeg"},
		{key: "archive.zip", want: "application/zip"},
		{key: "no-extension", want: "application/octet-stream"},
		{key: "weird.xyzzy", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, mimeTypeForKey(tt.key))
		})
	}
}
