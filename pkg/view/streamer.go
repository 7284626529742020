// Package view implements the content streamer: turning a file handle into
// bytes or a view decision.
//
// The streamer exposes the primitives (classify, external-view attempt, full
// read); the view policy composing them into a decision lives with the
// gateway front end, which owns the HTTP mapping of each outcome.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// readChunkSize is the buffer size for the content read loop.
const readChunkSize = 8192

// DefaultInlineMimeTypes is the fixed allow-list of MIME types rendered
// inline as UTF-8 text.
var DefaultInlineMimeTypes = []string{"application/json", "text/plain"}

// Streamer reads and classifies file content through the provider.
type Streamer struct {
	provider provider.Provider
	inline   map[string]bool
}

// NewStreamer creates a streamer over the given provider. inlineMimeTypes
// is the set of types viewable inline; nil selects DefaultInlineMimeTypes.
func NewStreamer(p provider.Provider, inlineMimeTypes []string) *Streamer {
	if p == nil {
		panic("provider cannot be nil")
	}

	if inlineMimeTypes == nil {
		inlineMimeTypes = DefaultInlineMimeTypes
	}
	inline := make(map[string]bool, len(inlineMimeTypes))
	for _, mt := range inlineMimeTypes {
		inline[mt] = true
	}

	return &Streamer{provider: p, inline: inline}
}

// Classify queries the provider for the file's declared MIME type. A handle
// that no longer resolves surfaces as an ErrNotFound provider error.
func (s *Streamer) Classify(ctx context.Context, file handle.Handle) (string, error) {
	return s.provider.Classify(ctx, file)
}

// InlineViewable reports whether the MIME type is in the inline allow-list.
func (s *Streamer) InlineViewable(mimeType string) bool {
	return s.inline[mimeType]
}

// TryExternalView asks the host platform to open the file in an external
// viewer. Returns false with a nil error specifically when no application is
// registered for the type; any other platform failure propagates.
func (s *Streamer) TryExternalView(ctx context.Context, file handle.Handle) (bool, error) {
	return s.provider.OpenExternal(ctx, file)
}

// ReadAll reads the full content of the file into memory.
//
// Reads proceed through a fixed-size buffer until the provider signals
// end-of-stream; no partial read is ever exposed to the caller. Files served
// by this gateway are bounded by the inline-view policy, so whole-file
// buffering is acceptable.
func (s *Streamer) ReadAll(ctx context.Context, file handle.Handle) ([]byte, error) {
	rc, err := s.provider.OpenStream(ctx, file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	buf := make([]byte, readChunkSize)
	var out []byte
	for {
		n, err := rc.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read content of %s: %w", file, err)
		}
	}
	return out, nil
}
