// Package memory implements an in-memory document provider.
//
// This implementation is suitable for development environments and tests: it
// issues its own handles, keeps the whole tree in process memory, and lets
// callers register which MIME types have an "external viewer" available.
//
// Storage Model:
//
// The provider maintains a single flat map from handle to node. Directory
// nodes carry an ordered child slice (insertion order, which is the order
// ListChildren reports; the gateway must never reorder it). Tree roots are
// ordinary directory nodes whose handles carry the "tree:" prefix.
//
// Thread Safety: all operations are protected by a read-write mutex.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

type node struct {
	name     string
	mimeType string
	size     uint64
	modified int64 // epoch millis; zero for directories
	content  []byte

	// children preserves insertion order. Only populated for directories.
	children []handle.Handle
}

func (n *node) isDirectory() bool {
	return n.mimeType == provider.DirectoryMimeType
}

// MemoryProvider implements provider.Provider over in-memory nodes.
type MemoryProvider struct {
	mu      sync.RWMutex
	nodes   map[handle.Handle]*node
	trees   map[handle.Handle]bool
	revoked map[handle.Handle]bool

	// viewers holds the MIME types an external viewer is registered for.
	viewers map[string]bool

	// durable records RequestDurablePermission calls for inspection.
	durable map[handle.Handle]provider.PermissionFlags
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		nodes:   make(map[handle.Handle]*node),
		trees:   make(map[handle.Handle]bool),
		revoked: make(map[handle.Handle]bool),
		viewers: make(map[string]bool),
		durable: make(map[handle.Handle]provider.PermissionFlags),
	}
}

// NewTree creates a new tree root and returns its handle. The tree handle
// doubles as the root container handle.
func (p *MemoryProvider) NewTree(name string) handle.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := handle.Handle("tree:" + uuid.NewString())
	p.nodes[h] = &node{name: name, mimeType: provider.DirectoryMimeType}
	p.trees[h] = true
	return h
}

// AddDirectory creates a directory under parent and returns its handle.
// Panics if parent is not a known directory (fixture construction error).
func (p *MemoryProvider) AddDirectory(parent handle.Handle, name string) handle.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	dir := p.mustDirectory(parent)
	h := handle.Handle("doc:" + uuid.NewString())
	p.nodes[h] = &node{name: name, mimeType: provider.DirectoryMimeType}
	dir.children = append(dir.children, h)
	return h
}

// AddFile creates a file under parent with the given MIME type, content and
// modification instant, and returns its handle.
func (p *MemoryProvider) AddFile(parent handle.Handle, name, mimeType string, content []byte, modified time.Time) handle.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	dir := p.mustDirectory(parent)
	h := handle.Handle("doc:" + uuid.NewString())
	p.nodes[h] = &node{
		name:     name,
		mimeType: mimeType,
		size:     uint64(len(content)),
		modified: modified.UnixMilli(),
		content:  content,
	}
	dir.children = append(dir.children, h)
	return h
}

// RegisterViewer marks a MIME type as having an external viewer available.
func (p *MemoryProvider) RegisterViewer(mimeType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewers[mimeType] = true
}

// Revoke simulates the user revoking access to a tree: subsequent resolve
// and list calls against it fail the way a real provider fails after
// revocation.
func (p *MemoryProvider) Revoke(tree handle.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[tree] = true
}

// DurableFlags returns the flags RequestDurablePermission recorded for the
// given tree, for test inspection.
func (p *MemoryProvider) DurableFlags(tree handle.Handle) (provider.PermissionFlags, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	flags, ok := p.durable[tree]
	return flags, ok
}

func (p *MemoryProvider) mustDirectory(h handle.Handle) *node {
	n, ok := p.nodes[h]
	if !ok || !n.isDirectory() {
		panic("memory provider: parent is not a known directory: " + h.String())
	}
	return n
}

// ResolveTree validates that the handle denotes a live tree root.
func (p *MemoryProvider) ResolveTree(ctx context.Context, tree handle.Handle) (handle.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.trees[tree] || p.revoked[tree] {
		return "", provider.NewError(provider.ErrInvalidHandle,
			"handle does not denote an authorized tree", tree.String())
	}
	return tree, nil
}

// ListChildren returns the immediate children of the container in insertion
// order.
func (p *MemoryProvider) ListChildren(ctx context.Context, container handle.Handle) ([]provider.ChildRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.revoked[container] {
		return nil, provider.NewError(provider.ErrResolution,
			"container access revoked", container.String())
	}

	dir, ok := p.nodes[container]
	if !ok || !dir.isDirectory() {
		return nil, provider.NewError(provider.ErrResolution,
			"container handle is stale or not a directory", container.String())
	}

	records := make([]provider.ChildRecord, 0, len(dir.children))
	for _, ch := range dir.children {
		n := p.nodes[ch]
		records = append(records, provider.ChildRecord{
			Name:               n.name,
			ID:                 ch,
			MimeType:           n.mimeType,
			Size:               n.size,
			LastModifiedMillis: n.modified,
		})
	}
	return records, nil
}

// Classify returns the declared MIME type of a file.
func (p *MemoryProvider) Classify(ctx context.Context, file handle.Handle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	n, ok := p.nodes[file]
	if !ok || n.isDirectory() {
		return "", provider.NewError(provider.ErrNotFound,
			"file handle no longer resolves", file.String())
	}
	return n.mimeType, nil
}

// OpenStream opens the file content for reading.
func (p *MemoryProvider) OpenStream(ctx context.Context, file handle.Handle) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	n, ok := p.nodes[file]
	if !ok || n.isDirectory() {
		return nil, provider.NewError(provider.ErrNotFound,
			"file handle no longer resolves", file.String())
	}
	return io.NopCloser(bytes.NewReader(n.content)), nil
}

// OpenExternal reports whether an external viewer is registered for the
// file's MIME type. A missing registration is not a failure.
func (p *MemoryProvider) OpenExternal(ctx context.Context, file handle.Handle) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	n, ok := p.nodes[file]
	if !ok || n.isDirectory() {
		return false, provider.NewError(provider.ErrNotFound,
			"file handle no longer resolves", file.String())
	}
	return p.viewers[n.mimeType], nil
}

// RequestDurablePermission records the durable grant request.
func (p *MemoryProvider) RequestDurablePermission(ctx context.Context, tree handle.Handle, flags provider.PermissionFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.trees[tree] || p.revoked[tree] {
		return provider.NewError(provider.ErrInvalidHandle,
			"handle does not denote an authorized tree", tree.String())
	}
	p.durable[tree] = flags
	return nil
}
