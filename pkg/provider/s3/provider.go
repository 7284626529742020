// Package s3 implements a document provider backed by Amazon S3 or
// S3-compatible storage.
//
// Handle Grammar (issued by this provider, opaque to everything above it):
//
//	Kind        Format                     Example
//	=========================================================
//	Tree root   tree:<bucket>/<prefix>     tree:media/photos/
//	Directory   dir:<bucket>/<prefix>      dir:media/photos/2023/
//	File        doc:<bucket>/<key>         doc:media/photos/2023/a.jpg
//
// Directories are synthesized from key prefixes using the "/" delimiter, the
// usual way S3 consoles present buckets. Listings materialize the full
// provider result set by following continuation tokens; nothing is cached.
//
// S3 has no concept of an external viewer application, so OpenExternal
// always reports "no handler registered" and the gateway falls through to
// the inline-view policy.
//
// Thread Safety: the underlying S3 client is safe for concurrent use and the
// provider holds no mutable state.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

const (
	treePrefix = "tree:"
	dirPrefix  = "dir:"
	docPrefix  = "doc:"
)

// S3Provider implements provider.Provider over an S3 bucket.
type S3Provider struct {
	client *s3.Client
	bucket string

	// rootPrefix is the key prefix the authorized tree is rooted at.
	// Empty means the whole bucket. Always ends with "/" when non-empty.
	rootPrefix string
}

// S3ProviderConfig contains configuration for creating an S3 provider.
type S3ProviderConfig struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name.
	Bucket string

	// RootPrefix roots the authorized tree at a key prefix inside the
	// bucket. Empty exposes the whole bucket.
	RootPrefix string
}

// NewS3Provider creates a provider over the given bucket. The bucket must
// already exist; access is verified with a HeadBucket call.
func NewS3Provider(ctx context.Context, cfg S3ProviderConfig) (*S3Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	rootPrefix := cfg.RootPrefix
	if rootPrefix != "" && !strings.HasSuffix(rootPrefix, "/") {
		rootPrefix += "/"
	}

	p := &S3Provider{
		client:     cfg.Client,
		bucket:     cfg.Bucket,
		rootPrefix: rootPrefix,
	}

	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", p.bucket, err)
	}

	return p, nil
}

// TreeHandle returns the handle for the provider's configured tree root.
// This is the handle a consent surface grants on headless deployments.
func (p *S3Provider) TreeHandle() handle.Handle {
	return handle.Handle(treePrefix + p.bucket + "/" + p.rootPrefix)
}

// decode splits a handle into its kind prefix and bucket-relative location,
// validating that the bucket matches this provider's.
func (p *S3Provider) decode(h handle.Handle, kinds ...string) (kind, location string, err error) {
	raw := h.String()
	for _, k := range kinds {
		if !strings.HasPrefix(raw, k) {
			continue
		}
		rest := strings.TrimPrefix(raw, k)
		bucket, loc, ok := strings.Cut(rest, "/")
		if !ok || bucket != p.bucket {
			return "", "", provider.NewError(provider.ErrInvalidHandle,
				"handle does not belong to this provider", raw)
		}
		return k, loc, nil
	}
	return "", "", provider.NewError(provider.ErrInvalidHandle,
		"malformed handle", raw)
}

// ResolveTree validates that the handle denotes this provider's tree root
// and returns the root container handle (the tree handle itself).
func (p *S3Provider) ResolveTree(ctx context.Context, tree handle.Handle) (handle.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, prefix, err := p.decode(tree, treePrefix)
	if err != nil {
		return "", err
	}
	if prefix != p.rootPrefix {
		return "", provider.NewError(provider.ErrInvalidHandle,
			"handle does not denote the authorized tree", tree.String())
	}
	return tree, nil
}

// OpenExternal always reports that no external viewer is registered: object
// storage has no application registry to hand a file to.
func (p *S3Provider) OpenExternal(ctx context.Context, file handle.Handle) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, _, err := p.decode(file, docPrefix); err != nil {
		return false, err
	}
	return false, nil
}

// RequestDurablePermission is a no-op beyond handle validation: S3 access is
// scoped by the credentials the provider was built with, which are already
// durable.
func (p *S3Provider) RequestDurablePermission(ctx context.Context, tree handle.Handle, flags provider.PermissionFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.decode(tree, treePrefix)
	return err
}

// OpenStream opens the object for reading. The caller owns the returned
// ReadCloser.
func (p *S3Provider) OpenStream(ctx context.Context, file handle.Handle) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, key, err := p.decode(file, docPrefix)
	if err != nil {
		return nil, err
	}

	result, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, provider.NewError(provider.ErrNotFound,
				"object no longer exists", file.String())
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return result.Body, nil
}
