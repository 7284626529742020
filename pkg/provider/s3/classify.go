package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/docgate/docgate/pkg/handle"
	"github.com/docgate/docgate/pkg/provider"
)

// fallbackMimeType is reported when neither the object metadata nor content
// sniffing yields a type.
const fallbackMimeType = "application/octet-stream"

// sniffLen is how many leading bytes magic-number sniffing needs.
const sniffLen = 261

// Classify returns the object's MIME type.
//
// The declared Content-Type from object metadata wins when present and
// specific. Objects uploaded without one (or as the catch-all octet-stream)
// are sniffed by magic number from their leading bytes; a plain extension
// lookup is the last resort before the octet-stream fallback.
func (p *S3Provider) Classify(ctx context.Context, file handle.Handle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, key, err := p.decode(file, docPrefix)
	if err != nil {
		return "", err
	}

	head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return "", provider.NewError(provider.ErrNotFound,
				"object no longer exists", file.String())
		}
		return "", fmt.Errorf("failed to head object %q: %w", key, err)
	}

	declared := aws.ToString(head.ContentType)
	if declared != "" && declared != fallbackMimeType {
		return declared, nil
	}

	if sniffed := p.sniffMimeType(ctx, key); sniffed != "" {
		return sniffed, nil
	}

	return mimeTypeForKey(key), nil
}

// sniffMimeType fetches the object's leading bytes and matches them against
// known magic numbers. Returns "" when nothing matches or the range read
// fails; classification then falls back to the extension.
func (p *S3Provider) sniffMimeType(ctx context.Context, key string) string {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", sniffLen-1)),
	})
	if err != nil {
		return ""
	}
	defer func() { _ = out.Body.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(out.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ""
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == types.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// mimeTypeForKey guesses a MIME type from the key's extension. Used for
// listings, where a HEAD per object would be prohibitive, and as the last
// classification fallback.
func mimeTypeForKey(key string) string {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if ext == "" {
		return fallbackMimeType
	}

	switch strings.ToLower(ext) {
	case "txt", "log", "md":
		return "text/plain"
	case "json":
		return "application/json"
	}

	if kind := filetype.GetType(strings.ToLower(ext)); kind != types.Unknown {
		return kind.MIME.Value
	}
	return fallbackMimeType
}
