// Package source loads reactor templates by name from a directory tree or
// an S3 bucket.
package source

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/lance/internal/errors"
)

// Source loads template markup by name.
type Source interface {
	Load(ctx context.Context, name string) (string, error)
}

// DirSource loads templates from a file system.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource creates a source over fsys (typically os.DirFS(dir)).
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Load reads name from the file system.
func (d *DirSource) Load(_ context.Context, name string) (string, error) {
	data, err := fs.ReadFile(d.fsys, path.Clean(name))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.New("L040").WithPath(name).Wrap(err)
		}
		return "", errors.New("L041").WithPath(name).Wrap(err)
	}
	return string(data), nil
}

// ObjectGetter is the part of *s3.Client that S3Source uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads templates from an S3 bucket.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

// NewS3Source creates a source reading bucket objects under prefix.
func NewS3Source(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Load fetches prefix+name from the bucket.
func (s *S3Source) Load(ctx context.Context, name string) (string, error) {
	key := s.prefix + strings.TrimPrefix(name, "/")
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return "", errors.New("L040").WithPath("s3://" + s.bucket + "/" + key).Wrap(err)
		}
		return "", errors.New("L041").WithPath("s3://" + s.bucket + "/" + key).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", errors.New("L041").WithPath("s3://" + s.bucket + "/" + key).Wrap(err)
	}
	return string(data), nil
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
