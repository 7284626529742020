package grant

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
	providermem "github.com/docgate/docgate/pkg/provider/memory"
)

// memStore is a minimal grant.Store for manager tests. A separate copy from
// pkg/grant/memory avoids an import cycle with the contract test suite.
type memStore struct {
	mu     sync.Mutex
	active *Grant
	puts   int
}

func (s *memStore) Active(ctx context.Context) (*Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, nil
	}
	g := *s.active
	return &g, nil
}

func (s *memStore) Put(ctx context.Context, g *Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.active = &cp
	s.puts++
	return nil
}

func (s *memStore) Close() error { return nil }

// failingStore rejects every Put.
type failingStore struct{ memStore }

func (s *failingStore) Put(ctx context.Context, g *Grant) error {
	return errors.New("disk full")
}

// recordingConsent captures prompt codes without answering them.
type recordingConsent struct {
	codes   []string
	results chan provider.ConsentResult
}

func newRecordingConsent() *recordingConsent {
	return &recordingConsent{results: make(chan provider.ConsentResult, 4)}
}

func (c *recordingConsent) PromptForTree(requestCode string) {
	c.codes = append(c.codes, requestCode)
}

func (c *recordingConsent) Results() <-chan provider.ConsentResult {
	return c.results
}

func fixtureProvider(t *testing.T) (*providermem.MemoryProvider, handle.Handle) {
	t.Helper()
	p := providermem.NewMemoryProvider()
	tree := p.NewTree("Documents")
	return p, tree
}

func successResult(code string, tree handle.Handle) provider.ConsentResult {
	return provider.ConsentResult{
		RequestCode:   code,
		Outcome:       provider.OutcomeSuccess,
		GrantedHandle: tree,
		Flags:         provider.PermRead | provider.PermWrite | provider.PermPersistable,
	}
}

func TestRequestAccess_PromptsWithFreshCode(t *testing.T) {
	p, _ := fixtureProvider(t)
	consent := newRecordingConsent()
	m := NewManager(&memStore{}, p, consent)

	code1 := m.RequestAccess(context.Background())
	code2 := m.RequestAccess(context.Background())

	assert.Equal(t, []string{code1, code2}, consent.codes)
	assert.NotEqual(t, code1, code2)
}

func TestOnAuthorizationResult_PersistsGrantAndRedirects(t *testing.T) {
	p, tree := fixtureProvider(t)
	consent := newRecordingConsent()
	store := &memStore{}
	m := NewManager(store, p, consent)
	ctx := context.Background()

	code := m.RequestAccess(ctx)
	redirect, err := m.OnAuthorizationResult(ctx, successResult(code, tree))
	require.NoError(t, err)

	assert.Equal(t, "/?uri="+url.QueryEscape(tree.String()), redirect)

	h, ok, err := m.ActiveTreeHandle(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree, h)

	// Granted flags must be masked to read-only before being made durable.
	assert.Equal(t, provider.PermRead, store.active.Flags)
	durable, ok := p.DurableFlags(tree)
	require.True(t, ok)
	assert.Equal(t, provider.PermRead, durable)
}

func TestOnAuthorizationResult_MismatchedCodeIsIgnored(t *testing.T) {
	p, tree := fixtureProvider(t)
	consent := newRecordingConsent()
	store := &memStore{}
	m := NewManager(store, p, consent)
	ctx := context.Background()

	m.RequestAccess(ctx)

	redirect, err := m.OnAuthorizationResult(ctx, successResult("not-the-code", tree))
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Zero(t, store.puts)

	_, ok, err := m.ActiveTreeHandle(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOnAuthorizationResult_CancelIsSilent(t *testing.T) {
	p, _ := fixtureProvider(t)
	consent := newRecordingConsent()
	store := &memStore{}
	m := NewManager(store, p, consent)
	ctx := context.Background()

	code := m.RequestAccess(ctx)

	redirect, err := m.OnAuthorizationResult(ctx, provider.ConsentResult{
		RequestCode: code,
		Outcome:     provider.OutcomeCancelled,
	})
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Zero(t, store.puts)
}

func TestOnAuthorizationResult_SuccessWithoutHandleIsSilent(t *testing.T) {
	p, _ := fixtureProvider(t)
	consent := newRecordingConsent()
	store := &memStore{}
	m := NewManager(store, p, consent)
	ctx := context.Background()

	code := m.RequestAccess(ctx)

	redirect, err := m.OnAuthorizationResult(ctx, provider.ConsentResult{
		RequestCode: code,
		Outcome:     provider.OutcomeSuccess,
	})
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Zero(t, store.puts)
}

func TestOnAuthorizationResult_Idempotent(t *testing.T) {
	p, tree := fixtureProvider(t)
	consent := newRecordingConsent()
	store := &memStore{}
	m := NewManager(store, p, consent)
	ctx := context.Background()

	// Two full request/result cycles with the same outcome must converge on
	// the same persisted grant (last write wins, no duplication).
	for i := 0; i < 2; i++ {
		code := m.RequestAccess(ctx)
		_, err := m.OnAuthorizationResult(ctx, successResult(code, tree))
		require.NoError(t, err)
	}

	h, ok, err := m.ActiveTreeHandle(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree, h)
	assert.Equal(t, 2, store.puts)
}

func TestOnAuthorizationResult_PersistFailureIsFatal(t *testing.T) {
	p, tree := fixtureProvider(t)
	consent := newRecordingConsent()
	m := NewManager(&failingStore{}, p, consent)
	ctx := context.Background()

	code := m.RequestAccess(ctx)

	_, err := m.OnAuthorizationResult(ctx, successResult(code, tree))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist")
}

func TestRun_PumpsConsentResults(t *testing.T) {
	p, tree := fixtureProvider(t)
	store := &memStore{}
	consent := provider.NewStaticConsent(tree, provider.PermRead|provider.PermPersistable)
	m := NewManager(store, p, consent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.RequestAccess(ctx)

	// StaticConsent answers synchronously; wait for the pump to apply it.
	require.Eventually(t, func() bool {
		_, ok, err := m.ActiveTreeHandle(ctx)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
