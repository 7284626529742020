// Package tree turns opaque container handles into one level of typed
// children.
//
// The resolver is stateless glue over the provider: it validates tree
// handles, expands containers, classifies entries as directory or file via
// the provider's MIME sentinel, and normalizes provider timestamps. It never
// recurses, never paginates, and never caches or reorders what the provider
// returns.
package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// Entry is one child of a resolved container, produced fresh per request.
type Entry struct {
	// Name is the display name.
	Name string

	// Handle identifies the entry for subsequent listing or viewing.
	Handle handle.Handle

	// IsDirectory is derived from the provider's MIME sentinel and nothing
	// else; extensions are never consulted.
	IsDirectory bool

	// LastModified is the modification instant, millisecond precision,
	// normalized to UTC. Zero for directories.
	LastModified time.Time

	// Size is the byte count. Zero for directories.
	Size uint64

	// MimeType is the provider-declared type, passed through unchanged.
	MimeType string
}

// Resolver expands tree and directory handles through the provider.
type Resolver struct {
	provider provider.Provider
}

// NewResolver creates a resolver over the given provider.
func NewResolver(p provider.Provider) *Resolver {
	if p == nil {
		panic("provider cannot be nil")
	}
	return &Resolver{provider: p}
}

// ResolveTree validates that the handle denotes a tree-rooted document and
// returns the container handle for its root. A provider rejection (for
// example a revoked grant) surfaces as an ErrInvalidHandle provider error.
func (r *Resolver) ResolveTree(ctx context.Context, tree handle.Handle) (handle.Handle, error) {
	root, err := r.provider.ResolveTree(ctx, tree)
	if err != nil {
		if _, ok := provider.CodeOf(err); ok {
			return "", err
		}
		return "", fmt.Errorf("failed to resolve tree %s: %w", tree, err)
	}
	return root, nil
}

// ListChildren produces exactly the immediate children of the given
// directory or tree-root container, in the order the provider reported them.
//
// An entry is a directory iff its reported MIME type equals the provider's
// directory sentinel. File metadata is passed through unchanged except for
// LastModified, which is converted from epoch milliseconds to a UTC instant.
//
// A stale or unauthorized container surfaces as an ErrResolution provider
// error; callers degrade to "no content" rather than retrying, since a
// resolution failure implies the active grant is no longer valid.
func (r *Resolver) ListChildren(ctx context.Context, container handle.Handle) ([]Entry, error) {
	records, err := r.provider.ListChildren(ctx, container)
	if err != nil {
		if _, ok := provider.CodeOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list children of %s: %w", container, err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		e := Entry{
			Name:        rec.Name,
			Handle:      rec.ID,
			IsDirectory: rec.MimeType == provider.DirectoryMimeType,
			MimeType:    rec.MimeType,
		}
		if !e.IsDirectory {
			e.LastModified = time.UnixMilli(rec.LastModifiedMillis).UTC()
			e.Size = rec.Size
		}
		entries = append(entries, e)
	}
	return entries, nil
}
