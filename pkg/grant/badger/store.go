// Package badger implements a durable grant store backed by BadgerDB.
//
// BadgerDB is an embedded key-value store with WAL-based crash recovery,
// which makes the single persisted grant survive process restarts and
// crashes. The database carries one namespace:
//
//	Data Type      Prefix   Key Format    Value Type
//	====================================================
//	Active Grant   "g:"     g:active      grant.Grant (JSON)
//
// JSON values keep the stored grant human-readable and inspectable with the
// badger CLI, which matters more here than encoding size: the store holds
// exactly one small record.
package badger

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/docgate/docgate/pkg/grant"
)

// keyActiveGrant is the singleton key the active grant is stored under.
func keyActiveGrant() []byte {
	return []byte("g:active")
}

// BadgerGrantStore implements grant.Store using BadgerDB for persistence.
//
// Thread Safety: BadgerDB transactions provide isolation; the store itself
// holds no mutable state outside the database and is safe for concurrent use.
type BadgerGrantStore struct {
	db *badger.DB
}

// BadgerGrantStoreConfig contains configuration for creating a BadgerDB
// grant store.
type BadgerGrantStoreConfig struct {
	// DBPath is the directory where BadgerDB stores its files. Created if it
	// does not exist.
	DBPath string `mapstructure:"db_path"`

	// BadgerOptions allows customization of BadgerDB behavior. If nil,
	// defaults tuned for a tiny single-record workload are used.
	BadgerOptions *badger.Options
}

// NewBadgerGrantStore opens (or creates) a BadgerDB-backed grant store at
// the configured path.
//
// Parameters:
//   - ctx: Context for cancellation during initialization
//   - cfg: Configuration including the database path
//
// Returns:
//   - *BadgerGrantStore: A store ready for use
//   - error: If the database cannot be opened or the context is cancelled
func NewBadgerGrantStore(ctx context.Context, cfg BadgerGrantStoreConfig) (*BadgerGrantStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("badger grant store: db_path is required")
	}

	var opts badger.Options
	if cfg.BadgerOptions != nil {
		opts = *cfg.BadgerOptions
	} else {
		opts = badger.DefaultOptions(cfg.DBPath)
		opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
		opts = opts.WithCompression(options.None)    // One tiny record, compression is pure overhead
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	return &BadgerGrantStore{db: db}, nil
}

// Active reads the persisted grant. Returns (nil, nil) when no grant has
// ever been stored.
func (s *BadgerGrantStore) Active(ctx context.Context) (*grant.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g *grant.Grant

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyActiveGrant())
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			var decoded grant.Grant
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("failed to decode stored grant: %w", err)
			}
			g = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Put overwrites the persisted grant. Last write wins; the previous grant is
// not retained.
func (s *BadgerGrantStore) Put(ctx context.Context, g *grant.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode grant: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyActiveGrant(), encoded)
	})
}

// Close closes the underlying database, flushing pending writes to disk.
// The store must not be used after Close.
func (s *BadgerGrantStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
