package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/lance/internal/errors"
)

func TestDirSource(t *testing.T) {
	src := NewDirSource(fstest.MapFS{
		"cards/card.html": {Data: []byte("<div>{title}</div>")},
	})

	got, err := src.Load(context.Background(), "cards/card.html")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "<div>{title}</div>" {
		t.Errorf("Load() = %q", got)
	}

	_, err = src.Load(context.Background(), "missing.html")
	if !errors.HasCode(err, "L040") {
		t.Errorf("Load(missing) error = %v, want L040", err)
	}
}

// fakeS3 serves objects from a map.
type fakeS3 struct {
	objects map[string]string
	fail    error
	lastKey string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	if f.fail != nil {
		return nil, f.fail
	}
	body, ok := f.objects[f.lastKey]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{
		"tmpl/views/counter.html": "<b>{count}</b>",
	}}
	src := NewS3Source(fake, "tmpl", "views/")

	got, err := src.Load(context.Background(), "/counter.html")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "<b>{count}</b>" {
		t.Errorf("Load() = %q", got)
	}
	if fake.lastKey != "tmpl/views/counter.html" {
		t.Errorf("requested key = %q", fake.lastKey)
	}

	_, err = src.Load(context.Background(), "absent.html")
	if !errors.HasCode(err, "L040") {
		t.Errorf("Load(absent) error = %v, want L040", err)
	}

	fake.fail = fmt.Errorf("network down")
	_, err = src.Load(context.Background(), "counter.html")
	if !errors.HasCode(err, "L041") {
		t.Errorf("Load(failing) error = %v, want L041", err)
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://bucket/a/b.html", "bucket", "a/b.html", true},
		{"s3://bucket", "", "", false},
		{"s3:///key", "", "", false},
		{"file.html", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := ParseS3URI(tt.uri)
		if bucket != tt.bucket || key != tt.key || ok != tt.ok {
			t.Errorf("ParseS3URI(%q) = %q, %q, %v", tt.uri, bucket, key, ok)
		}
	}
}
