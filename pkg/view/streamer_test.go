package view

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/pkg/provider"
	providermem "github.com/docgate/docgate/pkg/provider/memory"
)

func TestReadAll_SpansMultipleChunks(t *testing.T) {
	p := providermem.NewMemoryProvider()
	tree := p.NewTree("root")

	// Three full read-loop chunks plus a tail.
	content := bytes.Repeat([]byte("x"), 3*readChunkSize+17)
	file := p.AddFile(tree, "big.txt", "text/plain", content, time.Now())

	s := NewStreamer(p, nil)
	data, err := s.ReadAll(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestReadAll_EmptyFile(t *testing.T) {
	p := providermem.NewMemoryProvider()
	tree := p.NewTree("root")
	file := p.AddFile(tree, "empty.txt", "text/plain", nil, time.Now())

	s := NewStreamer(p, nil)
	data, err := s.ReadAll(context.Background(), file)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadAll_NotFound(t *testing.T) {
	p := providermem.NewMemoryProvider()
	p.NewTree("root")

	s := NewStreamer(p, nil)
	_, err := s.ReadAll(context.Background(), "doc:gone")
	code, ok := provider.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, provider.ErrNotFound, code)
}

func TestClassify_NotFound(t *testing.T) {
	p := providermem.NewMemoryProvider()
	p.NewTree("root")

	s := NewStreamer(p, nil)
	_, err := s.Classify(context.Background(), "doc:gone")
	code, ok := provider.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, provider.ErrNotFound, code)
}

func TestInlineViewable_DefaultAllowList(t *testing.T) {
	p := providermem.NewMemoryProvider()
	s := NewStreamer(p, nil)

	assert.True(t, s.InlineViewable("text/plain"))
	assert.True(t, s.InlineViewable("application/json"))
	assert.False(t, s.InlineViewable("application/pdf"))
	assert.False(t, s.InlineViewable("text/html"))
}

func TestTryExternalView_FalseIsNotAnError(t *testing.T) {
	p := providermem.NewMemoryProvider()
	tree := p.NewTree("root")
	file := p.AddFile(tree, "doc.pdf", "application/pdf", []byte("%PDF"), time.Now())

	s := NewStreamer(p, nil)
	viewable, err := s.TryExternalView(context.Background(), file)
	require.NoError(t, err)
	assert.False(t, viewable)
}
