// Package provider defines the interface to the external document-provider
// platform.
//
// The provider owns all real state: it issues opaque handles, enforces
// permission grants, and performs the actual storage I/O. The gateway treats
// every provider call as a synchronous black box that may fail, and never
// retries.
//
// Implementations live in subpackages (memory, s3). All implementations must
// be safe for concurrent use.
package provider

import (
	"context"
	"io"

	"github.com/docgate/docgate/pkg/handle"
)

// DirectoryMimeType is the sentinel MIME value the provider uses to mark an
// entry as a directory. Classification uses this value and nothing else; file
// extensions are never consulted.
const DirectoryMimeType = "vnd.android.document/directory"

// PermissionFlags is the provider-defined permission bitmask attached to a
// consent grant.
type PermissionFlags uint32

const (
	// PermRead grants read access to the tree.
	PermRead PermissionFlags = 1 << iota

	// PermWrite grants write access. The gateway never requests or uses it;
	// flags are masked to PermRead before a grant is made durable.
	PermWrite

	// PermPersistable marks the grant as eligible for durable persistence
	// across sessions.
	PermPersistable
)

// ChildRecord is one child entry as reported by the provider when
// enumerating a container. Fields are passed through from the provider
// unchanged; interpretation (directory classification, time normalization)
// happens in the tree resolver.
type ChildRecord struct {
	// Name is the display name of the entry.
	Name string

	// ID is the provider-issued handle for the entry.
	ID handle.Handle

	// MimeType is the provider-declared MIME type. Equal to
	// DirectoryMimeType for directories.
	MimeType string

	// Size is the byte count. Zero for directories.
	Size uint64

	// LastModifiedMillis is the modification instant in epoch milliseconds.
	LastModifiedMillis int64
}

// Provider is the document-provider platform consumed by the gateway.
type Provider interface {
	// ResolveTree validates that the handle denotes a tree-rooted document
	// and returns the container handle for its root. Fails with an
	// ErrInvalidHandle provider error if the provider rejects the handle
	// (for example because the grant backing it was revoked).
	ResolveTree(ctx context.Context, tree handle.Handle) (handle.Handle, error)

	// ListChildren returns exactly the immediate children of the given
	// directory or tree-root container. The full provider result set is
	// materialized; ordering is whatever the provider returns. Fails with an
	// ErrResolution provider error if the container handle is stale or
	// unauthorized.
	ListChildren(ctx context.Context, container handle.Handle) ([]ChildRecord, error)

	// Classify returns the declared MIME type of a file. Fails with an
	// ErrNotFound provider error if the handle no longer resolves.
	Classify(ctx context.Context, file handle.Handle) (string, error)

	// OpenStream opens the file content for reading. The caller owns the
	// returned ReadCloser.
	OpenStream(ctx context.Context, file handle.Handle) (io.ReadCloser, error)

	// OpenExternal asks the host platform to open the file in an external
	// viewer appropriate to its MIME type. It returns false (with a nil
	// error) specifically when no application is registered for the type;
	// any other platform failure is returned as an error.
	OpenExternal(ctx context.Context, file handle.Handle) (bool, error)

	// RequestDurablePermission asks the platform to make the permission on
	// the given tree durable across sessions.
	RequestDurablePermission(ctx context.Context, tree handle.Handle, flags PermissionFlags) error
}
