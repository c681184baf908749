// Package s3fs serves files out of an S3 bucket. It implements the [bdispatch.FileSystem] that the
// file and folder handlers read from, so a bucket can be served with conditional and range
// requests like a local directory.
package s3fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/advdv/bdispatch"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
)

// Client defines the S3 operations the filesystem uses. *s3.Client implements it.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FS reads objects from a bucket. Names map to object keys below Prefix.
type FS struct {
	client Client
	bucket string
	prefix string
}

// Option configures an [FS].
type Option func(*FS)

// WithPrefix serves the keys below prefix, "site" maps the name "/index.html" to "site/index.html".
func WithPrefix(prefix string) Option {
	return func(f *FS) { f.prefix = strings.Trim(prefix, "/") }
}

// New creates a filesystem for the bucket.
func New(client Client, bucket string, opts ...Option) *FS {
	f := &FS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Stat implements [bdispatch.FileSystem]. Keys ending in a slash are directory markers and are
// reported as not being a file.
func (f *FS) Stat(ctx context.Context, name string) (bdispatch.FileInfo, error) {
	key := f.key(name)
	if key == "" {
		return bdispatch.FileInfo{}, nil
	}

	out, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return bdispatch.FileInfo{}, classify(err, "head", key)
	}

	return bdispatch.FileInfo{
		Size:    aws.ToInt64(out.ContentLength),
		ModTime: aws.ToTime(out.LastModified),
		IsFile:  !strings.HasSuffix(key, "/"),
	}, nil
}

// Open implements [bdispatch.FileSystem] with a ranged GetObject.
func (f *FS) Open(ctx context.Context, name string, start, end int64) (io.ReadCloser, error) {
	key := f.key(name)

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return nil, classify(err, "get", key)
	}

	return out.Body, nil
}

func (f *FS) key(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if f.prefix == "" {
		return name
	}
	if name == "" {
		return f.prefix + "/"
	}

	return f.prefix + "/" + name
}

// classify maps missing objects to fs.ErrNotExist so the file handlers answer them with a 404.
func classify(err error, op, key string) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return errors.Wrapf(fs.ErrNotExist, "%s %q", op, key)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return errors.Wrapf(fs.ErrNotExist, "%s %q", op, key)
	}

	return errors.Wrapf(err, "failed to %s object %q", op, key)
}

var _ bdispatch.FileSystem = (*FS)(nil)
