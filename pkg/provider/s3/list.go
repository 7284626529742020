package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// ListChildren returns the immediate children of a tree-root or directory
// container, synthesized from a delimiter listing.
//
// Common prefixes become directories (reported with the directory sentinel
// MIME type); object keys at this level become files. The full result set is
// materialized by following continuation tokens until S3 stops truncating.
// Ordering is whatever S3 returns (lexical by key); the gateway passes it
// through untouched.
func (p *S3Provider) ListChildren(ctx context.Context, container handle.Handle) ([]provider.ChildRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, prefix, err := p.decode(container, treePrefix, dirPrefix)
	if err != nil {
		// A handle this provider cannot decode is a stale container from a
		// previous grant.
		return nil, provider.NewError(provider.ErrResolution,
			"container handle is stale or unauthorized", container.String())
	}
	if kind == treePrefix && prefix != p.rootPrefix {
		return nil, provider.NewError(provider.ErrResolution,
			"container handle is stale or unauthorized", container.String())
	}

	var records []provider.ChildRecord
	var continuation *string

	for {
		out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}

		for _, cp := range out.CommonPrefixes {
			full := aws.ToString(cp.Prefix)
			name := strings.TrimSuffix(strings.TrimPrefix(full, prefix), "/")
			records = append(records, provider.ChildRecord{
				Name:     name,
				ID:       handle.Handle(dirPrefix + p.bucket + "/" + full),
				MimeType: provider.DirectoryMimeType,
			})
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// The zero-byte "folder marker" object some tools create
				// for the prefix itself.
				continue
			}
			rec := provider.ChildRecord{
				Name:     path.Base(key),
				ID:       handle.Handle(docPrefix + p.bucket + "/" + key),
				MimeType: mimeTypeForKey(key),
				Size:     uint64(aws.ToInt64(obj.Size)),
			}
			if obj.LastModified != nil {
				rec.LastModifiedMillis = obj.LastModified.UnixMilli()
			}
			records = append(records, rec)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}

	return records, nil
}
