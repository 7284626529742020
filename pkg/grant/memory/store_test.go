package memory

import (
	"testing"

	"github.com/docgate/docgate/pkg/grant"
	granttesting "github.com/docgate/docgate/pkg/grant/testing"
)

// TestMemoryGrantStore runs the grant store contract suite against the
// in-memory implementation.
func TestMemoryGrantStore(t *testing.T) {
	suite := &granttesting.StoreTestSuite{
		NewStore: func(t *testing.T) grant.Store {
			return NewMemoryGrantStore()
		},
	}

	suite.Run(t)
}
