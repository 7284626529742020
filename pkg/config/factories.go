package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/grant"
	grantBadger "github.com/docgate/docgate/pkg/grant/badger"
	grantMemory "github.com/docgate/docgate/pkg/grant/memory"
	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
	providerMemory "github.com/docgate/docgate/pkg/provider/memory"
	providerS3 "github.com/docgate/docgate/pkg/provider/s3"
)

// CreateProvider creates a document provider based on configuration.
//
// The second return value is the handle of the provider's default tree: the
// tree a static consent surface grants on headless deployments.
//
// Supported types:
//   - "memory": in-process provider seeded with a demo tree
//   - "s3": Amazon S3 or S3-compatible storage
func CreateProvider(ctx context.Context, cfg *ProviderConfig) (provider.Provider, handle.Handle, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryProvider(cfg.Memory)
	case "s3":
		return createS3Provider(ctx, cfg.S3)
	default:
		return nil, "", fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}

// createMemoryProvider creates the in-memory provider and seeds it with a
// small browsable fixture tree so a fresh deployment has something to show.
func createMemoryProvider(options map[string]any) (provider.Provider, handle.Handle, error) {
	type MemoryProviderConfig struct {
		TreeName string `mapstructure:"tree_name"`
	}

	var cfg MemoryProviderConfig
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode memory provider config: %w", err)
	}
	if cfg.TreeName == "" {
		cfg.TreeName = "Documents"
	}

	p := providerMemory.NewMemoryProvider()
	tree := p.NewTree(cfg.TreeName)

	now := time.Now()
	p.AddFile(tree, "readme.txt", "text/plain",
		[]byte("This is a README file.\nWelcome to docgate!\n"), now)
	p.AddFile(tree, "manifest.json", "application/json",
		[]byte("{\"name\":\"docgate\",\"version\":1}\n"), now)

	images := p.AddDirectory(tree, "images")
	p.AddFile(images, "background1.png", "image/png",
		[]byte("PNG image content for background1"), now)
	p.AddFile(images, "wallpaper.jpg", "image/jpeg",
		[]byte("JPEG image content for wallpaper"), now)

	logger.Info("memory provider seeded", logger.String("tree", tree.String()))
	return p, tree, nil
}

// createS3Provider creates an S3-backed provider.
func createS3Provider(ctx context.Context, options map[string]any) (provider.Provider, handle.Handle, error) {
	type S3ProviderOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		RootPrefix      string `mapstructure:"root_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		ForcePathStyle  bool   `mapstructure:"force_path_style"`
	}

	var opts S3ProviderOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, "", fmt.Errorf("failed to decode S3 provider config: %w", err)
	}

	if opts.Bucket == "" {
		return nil, "", fmt.Errorf("S3 provider: bucket is required")
	}
	if opts.Region == "" {
		return nil, "", fmt.Errorf("S3 provider: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))

	// Static credentials if provided; otherwise the default chain
	// (environment, shared config, instance role) applies.
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoint for S3-compatible storage (MinIO, Localstack).
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	p, err := providerS3.NewS3Provider(ctx, providerS3.S3ProviderConfig{
		Client:     client,
		Bucket:     opts.Bucket,
		RootPrefix: opts.RootPrefix,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create S3 provider: %w", err)
	}

	logger.Info("S3 provider ready",
		logger.String("bucket", opts.Bucket),
		logger.String("root_prefix", opts.RootPrefix))
	return p, p.TreeHandle(), nil
}

// CreateGrantStore creates a grant store based on configuration.
//
// Supported types:
//   - "memory": process-lifetime storage, for development and tests
//   - "badger": BadgerDB-backed durable storage
func CreateGrantStore(ctx context.Context, cfg *GrantsConfig) (grant.Store, error) {
	switch cfg.Type {
	case "memory":
		return grantMemory.NewMemoryGrantStore(), nil
	case "badger":
		return createBadgerGrantStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown grant store type: %q", cfg.Type)
	}
}

func createBadgerGrantStore(ctx context.Context, options map[string]any) (grant.Store, error) {
	type BadgerGrantStoreOptions struct {
		DBPath string `mapstructure:"db_path"`
	}

	var opts BadgerGrantStoreOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode badger grant store config: %w", err)
	}
	if opts.DBPath == "" {
		return nil, fmt.Errorf("badger grant store: db_path is required")
	}

	store, err := grantBadger.NewBadgerGrantStore(ctx, grantBadger.BadgerGrantStoreConfig{
		DBPath: opts.DBPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger grant store: %w", err)
	}
	return store, nil
}
