package config

import (
	"context"
	"testing"
)

func TestCreateProvider_Memory(t *testing.T) {
	cfg := validConfig()

	p, tree, err := CreateProvider(context.Background(), &cfg.Provider)
	if err != nil {
		t.Fatalf("Failed to create memory provider: %v", err)
	}
	if p == nil {
		t.Fatal("Expected provider, got nil")
	}
	if tree.IsZero() {
		t.Fatal("Expected a default tree handle, got zero value")
	}

	// The seeded tree must resolve and list its fixture entries.
	root, err := p.ResolveTree(context.Background(), tree)
	if err != nil {
		t.Fatalf("Failed to resolve seeded tree: %v", err)
	}
	children, err := p.ListChildren(context.Background(), root)
	if err != nil {
		t.Fatalf("Failed to list seeded tree: %v", err)
	}
	if len(children) == 0 {
		t.Error("Expected seeded tree to have children")
	}
}

func TestCreateProvider_UnknownType(t *testing.T) {
	cfg := &ProviderConfig{Type: "ftp"}

	_, _, err := CreateProvider(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unknown provider type, got nil")
	}
}

func TestCreateProvider_S3MissingBucket(t *testing.T) {
	cfg := &ProviderConfig{
		Type: "s3",
		S3:   map[string]any{"region": "us-east-1"},
	}

	_, _, err := CreateProvider(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for S3 provider without bucket, got nil")
	}
}

func TestCreateGrantStore_Memory(t *testing.T) {
	cfg := validConfig()

	store, err := CreateGrantStore(context.Background(), &cfg.Grants)
	if err != nil {
		t.Fatalf("Failed to create memory grant store: %v", err)
	}
	defer func() { _ = store.Close() }()

	g, err := store.Active(context.Background())
	if err != nil {
		t.Fatalf("Failed to read fresh store: %v", err)
	}
	if g != nil {
		t.Errorf("Expected no active grant in fresh store, got %+v", g)
	}
}

func TestCreateGrantStore_Badger(t *testing.T) {
	cfg := &GrantsConfig{
		Type:   "badger",
		Badger: map[string]any{"db_path": t.TempDir()},
	}

	store, err := CreateGrantStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create badger grant store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Failed to close badger grant store: %v", err)
	}
}

func TestCreateGrantStore_UnknownType(t *testing.T) {
	cfg := &GrantsConfig{Type: "etcd"}

	_, err := CreateGrantStore(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unknown grant store type, got nil")
	}
}
