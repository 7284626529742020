package grant

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// Manager drives the request-access → receive-grant → persist-grant
// lifecycle and answers "which tree is active" for every root listing.
//
// The consent round-trip is the only asynchronous boundary in the gateway:
// RequestAccess returns immediately and the eventual result arrives on the
// consent surface's channel at an arbitrary later time, potentially after
// unrelated requests have been served. Correlation is by request code only;
// there is no queue and no timeout. A second concurrent request simply
// re-prompts and supersedes the outstanding code.
type Manager struct {
	store    Store
	provider provider.Provider
	consent  provider.ConsentUI

	mu      sync.Mutex
	pending string // outstanding request code, empty when none
}

// NewManager creates an authorization manager over the given store, provider
// and consent surface.
//
// Panics if any collaborator is nil (programmer error).
func NewManager(store Store, p provider.Provider, consent provider.ConsentUI) *Manager {
	if store == nil {
		panic("grant store cannot be nil")
	}
	if p == nil {
		panic("provider cannot be nil")
	}
	if consent == nil {
		panic("consent surface cannot be nil")
	}

	return &Manager{store: store, provider: p, consent: consent}
}

// ActiveTreeHandle reads the persisted grant and returns its tree handle.
// The second return value is false when no grant has been persisted yet.
//
// Liveness is not validated against the provider here; a revoked grant is
// only discovered when a later provider call fails.
func (m *Manager) ActiveTreeHandle(ctx context.Context) (handle.Handle, bool, error) {
	g, err := m.store.Active(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to read active grant: %w", err)
	}
	if g == nil {
		return "", false, nil
	}
	return g.TreeHandle, true, nil
}

// RequestAccess issues an asynchronous request to the consent surface to
// prompt the user to pick a tree. It has no synchronous result; completion
// arrives later through OnAuthorizationResult. The generated request code is
// returned for correlation and logging.
func (m *Manager) RequestAccess(ctx context.Context) string {
	code := uuid.NewString()

	m.mu.Lock()
	m.pending = code
	m.mu.Unlock()

	m.consent.PromptForTree(code)
	logger.Info("access request issued", logger.String("request_code", code))

	return code
}

// OnAuthorizationResult is the single entry point for asynchronous consent
// results. It returns the redirect target for the front end to navigate to
// ("" when the result was ignored or cancelled).
//
//   - A request code that does not match the outstanding request is ignored;
//     this guards against unrelated platform callbacks.
//   - A cancelled outcome, or a success without a granted handle, clears the
//     outstanding request and changes nothing. No error is surfaced for a
//     declined prompt; silence is the accepted policy.
//   - Otherwise the grant is persisted and the permission is made durable
//     with the granted flags masked to read-only. A persistence failure is
//     fatal to this operation: an unpersisted grant would silently degrade
//     every future session to "no access".
func (m *Manager) OnAuthorizationResult(ctx context.Context, res provider.ConsentResult) (string, error) {
	m.mu.Lock()
	if res.RequestCode != m.pending {
		m.mu.Unlock()
		logger.Debug("ignoring consent result with unknown request code",
			logger.String("request_code", res.RequestCode))
		return "", nil
	}
	m.pending = ""
	m.mu.Unlock()

	if res.Outcome != provider.OutcomeSuccess || res.GrantedHandle.IsZero() {
		logger.Info("consent declined or dismissed",
			logger.String("request_code", res.RequestCode))
		return "", nil
	}

	flags := res.Flags & provider.PermRead

	g := &Grant{
		TreeHandle: res.GrantedHandle,
		Flags:      flags,
		GrantedAt:  time.Now().UTC(),
	}
	if err := m.store.Put(ctx, g); err != nil {
		return "", fmt.Errorf("failed to persist grant: %w", err)
	}

	if err := m.provider.RequestDurablePermission(ctx, res.GrantedHandle, flags); err != nil {
		return "", fmt.Errorf("failed to make permission durable: %w", err)
	}

	redirect := "/?uri=" + url.QueryEscape(res.GrantedHandle.String())
	logger.Info("grant persisted",
		logger.String("tree", res.GrantedHandle.String()),
		logger.String("redirect", redirect))

	return redirect, nil
}

// Run pumps consent results from the consent surface into
// OnAuthorizationResult until the context is cancelled or the channel
// closes. Intended to run on its own goroutine for the life of the process.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-m.consent.Results():
			if !ok {
				return
			}
			if _, err := m.OnAuthorizationResult(ctx, res); err != nil {
				logger.Error("authorization result handling failed", logger.Err(err))
			}
		}
	}
}
