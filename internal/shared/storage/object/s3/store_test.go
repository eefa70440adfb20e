package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "guides/global.md", want: "guides/global.md"},
		{name: "simple prefix", prefix: "kb", key: "global.md", want: "kb/global.md"},
		{name: "prefix trailing slash", prefix: "kb/", key: "global.md", want: "kb/global.md"},
		{name: "prefix and key slashes", prefix: "/kb/", key: "/global.md", want: "kb/global.md"},
		{name: "empty key", prefix: "kb/fr", key: "", want: "kb/fr"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	pages   [][]string
	calls   int
	objects map[string]string
	prefix  string
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.prefix = aws.ToString(in.Prefix)
	page := f.pages[f.calls]
	f.calls++
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(f.calls < len(f.pages))}
	if f.calls < len(f.pages) {
		out.NextContinuationToken = aws.String("next")
	}
	for _, key := range page {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(key)))})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.objects[aws.ToString(in.Key)]))}, nil
}

func TestListPagesAndStripsPrefix(t *testing.T) {
	fake := &fakeS3{
		pages: [][]string{
			{"kb/study_fr.md", "kb/guides/"},
			{"kb/global_documents.md"},
		},
		objects: map[string]string{"kb/global_documents.md": "global"},
	}
	store := NewWithClient(fake, "bucket", "/kb/")

	objs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if fake.prefix != "kb/" {
		t.Fatalf("expected list prefix kb/, got %q", fake.prefix)
	}
	if len(objs) != 2 || objs[0].Key != "global_documents.md" || objs[1].Key != "study_fr.md" {
		t.Fatalf("unexpected objects: %+v", objs)
	}

	rc, err := store.Open(context.Background(), "global_documents.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "global" {
		t.Fatalf("unexpected body %q", data)
	}
}
