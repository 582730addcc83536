package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// mockS3RoundTripper fakes the S3 REST subset the store uses, so the adapter
// is exercised through the real SDK without network access.
type mockS3RoundTripper struct {
	state map[string][]byte
}

func (m *mockS3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.listResponse(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeAWSChunked(body); ok {
			body = dec
		}
		m.state[key] = body
		return okResponse(nil), nil
	case http.MethodGet:
		if payload, ok := m.state[key]; ok {
			return okResponse(payload), nil
		}
		return notFoundResponse(), nil
	case http.MethodDelete:
		delete(m.state, key)
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func (m *mockS3RoundTripper) listResponse(prefix string) *http.Response {
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2026-01-01T00:00:00Z</LastModified></Contents>", k, len(m.state[k]))
	}
	b.WriteString(`</ListBucketResult>`)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(b.String())),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

func okResponse(payload []byte) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(payload))},
			"ETag":           {`"etag"`},
		},
	}
}

func notFoundResponse() *http.Response {
	body := `<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

// decodeAWSChunked unwraps a minimal single-chunk aws-chunked payload:
// <hex-size>\r\n<body>\r\n0\r\n...
func decodeAWSChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockS3(t *testing.T) *S3 {
	t.Helper()
	rt := &mockS3RoundTripper{state: make(map[string][]byte)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return NewS3WithClient(client, "mock-bucket")
}

func TestS3PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newMockS3(t)
	if store.Driver() != DriverS3 {
		t.Fatalf("unexpected driver %q", store.Driver())
	}

	if _, ok, err := store.Get(ctx, "missing.json"); err != nil || ok {
		t.Fatalf("missing key must be ok=false, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "transactions.json", []byte(`[{"id":"tx-1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "transactions.json")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"tx-1"}]` {
		t.Fatalf("payload mismatch: %s", got)
	}

	if _, err := store.Delete(ctx, "transactions.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "transactions.json"); ok {
		t.Fatalf("expected key gone after delete")
	}
}

func TestS3List(t *testing.T) {
	ctx := context.Background()
	store := newMockS3(t)
	for _, key := range []string{"b.json", "a.json", "sessions/c.json"} {
		if err := store.Put(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a.json", "b.json", "sessions/c.json"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected sorted keys %v, got %v", want, keys)
		}
	}

	filtered, err := store.List(ctx, "sessions/")
	if err != nil || len(filtered) != 1 || filtered[0] != "sessions/c.json" {
		t.Fatalf("prefix filter failed: %v err=%v", filtered, err)
	}
}

// fakeS3API drives the pagination loop without HTTP.
type fakeS3API struct {
	pages [][]string
	calls int
}

func (f *fakeS3API) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, nil
}

func (f *fakeS3API) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
}

func (f *fakeS3API) DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return nil, nil
}

func (f *fakeS3API) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.calls]
	f.calls++
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(f.calls < len(f.pages))}
	for _, key := range page {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	if f.calls < len(f.pages) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("tok-%d", f.calls))
	}
	return out, nil
}

func TestS3ListFollowsContinuationTokens(t *testing.T) {
	fake := &fakeS3API{pages: [][]string{{"b.json"}, {"a.json"}}}
	store := NewS3WithClient(fake, "mock-bucket")

	keys, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 pages fetched, got %d", fake.calls)
	}
	if len(keys) != 2 || keys[0] != "a.json" || keys[1] != "b.json" {
		t.Fatalf("expected merged sorted keys, got %v", keys)
	}
}

func TestS3GetMapsNoSuchKey(t *testing.T) {
	store := NewS3WithClient(&fakeS3API{}, "mock-bucket")
	_, ok, err := store.Get(context.Background(), "anything")
	if err != nil || ok {
		t.Fatalf("NoSuchKey must map to ok=false, got ok=%v err=%v", ok, err)
	}
}

func TestS3PutRejectsBadKeys(t *testing.T) {
	store := NewS3WithClient(&fakeS3API{}, "mock-bucket")
	if err := store.Put(context.Background(), "../escape", []byte("x")); err == nil {
		t.Fatalf("expected rejection for traversal key")
	}
}
