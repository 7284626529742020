// Package grant implements the authorization lifecycle: turning a one-time
// user consent into a durable, reusable grant on a single document tree.
package grant

import (
	"context"
	"time"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// Grant is the durable record that a tree handle is authorized for read
// access. Exactly one grant is active at a time: a new successful
// authorization overwrites the previous one, and grants are never explicitly
// deleted.
type Grant struct {
	// TreeHandle is the authorized tree.
	TreeHandle handle.Handle `json:"tree_handle"`

	// Flags are the permission flags the grant was persisted with, already
	// masked to read-only.
	Flags provider.PermissionFlags `json:"flags"`

	// GrantedAt records when the authorization callback was processed.
	GrantedAt time.Time `json:"granted_at"`
}

// Store persists the single active grant across process restarts.
//
// Implementations must be safe for concurrent use. Active returns (nil, nil)
// when no grant has ever been persisted; Put overwrites unconditionally
// (last write wins).
type Store interface {
	Active(ctx context.Context) (*Grant, error)
	Put(ctx context.Context, g *Grant) error
	Close() error
}
