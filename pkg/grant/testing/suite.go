// Package testing provides a reusable contract test suite for grant.Store
// implementations. It tests the interface contract, not implementation
// details, so the same suite runs against the memory and badger stores.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/pkg/grant"
	"github.com/docgate/docgate/pkg/provider"
)

// StoreTestSuite exercises the grant.Store contract.
type StoreTestSuite struct {
	// NewStore creates a fresh store instance per test for isolation.
	NewStore func(t *testing.T) grant.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("EmptyStoreHasNoGrant", suite.testEmpty)
	t.Run("PutThenActive", suite.testPutThenActive)
	t.Run("LastWriteWins", suite.testLastWriteWins)
}

func (suite *StoreTestSuite) testEmpty(t *testing.T) {
	store := suite.NewStore(t)
	defer func() { _ = store.Close() }()

	g, err := store.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, g)
}

func (suite *StoreTestSuite) testPutThenActive(t *testing.T) {
	store := suite.NewStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	in := &grant.Grant{
		TreeHandle: "tree:42",
		Flags:      provider.PermRead,
		GrantedAt:  time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, in))

	out, err := store.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.TreeHandle, out.TreeHandle)
	assert.Equal(t, in.Flags, out.Flags)
	assert.True(t, in.GrantedAt.Equal(out.GrantedAt))
}

func (suite *StoreTestSuite) testLastWriteWins(t *testing.T) {
	store := suite.NewStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, &grant.Grant{TreeHandle: "tree:old", Flags: provider.PermRead}))
	require.NoError(t, store.Put(ctx, &grant.Grant{TreeHandle: "tree:new", Flags: provider.PermRead}))

	out, err := store.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "tree:new", out.TreeHandle.String())
}
