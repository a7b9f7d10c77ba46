package s3store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type fakeAPI struct {
	putInput  *s3.PutObjectInput
	putErr    error
	listInput *s3.ListObjectsV2Input
	listErr   error
}

func (f *fakeAPI) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	// Drain the body like the SDK would.
	if params.Body != nil {
		_, _ = io.Copy(io.Discard, params.Body)
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listInput = params
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &s3.ListObjectsV2Output{}, nil
}

func newTestClient(fake *fakeAPI) *Client {
	c := New(Options{
		Endpoint:  "https://account.r2.cloudflarestorage.com",
		Region:    "auto",
		Bucket:    "backups",
		AccessKey: "key",
		SecretKey: "secret",
	})
	c.cli = fake
	return c
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup_orders_20240310_235800.sql")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPutFileSendsMetadataVerbatim(t *testing.T) {
	fake := &fakeAPI{}
	c := newTestClient(fake)

	metadata := map[string]string{
		"uploaded-by": "bsource-db-backup",
		"backup-type": "postgres",
		"database":    "orders",
		"timestamp":   "2024-03-10T23:58:00-03:00",
		"timezone":    "America/Sao_Paulo",
	}

	path := writeArtifact(t, "-- dump")
	err := c.PutFile(context.Background(), "backups/20240310/backup_orders_20240310_235800.sql", path, metadata)
	if err != nil {
		t.Fatalf("PutFile unexpected error: %v", err)
	}

	in := fake.putInput
	if in == nil {
		t.Fatal("PutObject was not called")
	}
	if *in.Bucket != "backups" {
		t.Fatalf("bucket: got %q", *in.Bucket)
	}
	if *in.Key != "backups/20240310/backup_orders_20240310_235800.sql" {
		t.Fatalf("key: got %q", *in.Key)
	}
	if *in.ContentLength != int64(len("-- dump")) {
		t.Fatalf("content length: got %d", *in.ContentLength)
	}
	if len(in.Metadata) != len(metadata) {
		t.Fatalf("metadata size: got %d want %d", len(in.Metadata), len(metadata))
	}
	for k, v := range metadata {
		if in.Metadata[k] != v {
			t.Fatalf("metadata %q: got %q want %q", k, in.Metadata[k], v)
		}
	}
}

func TestPutFileMapsAPIError(t *testing.T) {
	fake := &fakeAPI{putErr: &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "bucket does not exist"}}
	c := newTestClient(fake)

	path := writeArtifact(t, "-- dump")
	err := c.PutFile(context.Background(), "k", path, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "NoSuchBucket") {
		t.Fatalf("expected API error code in message, got: %v", err)
	}
}

func TestPutFileMissingLocalFile(t *testing.T) {
	c := newTestClient(&fakeAPI{})

	err := c.PutFile(context.Background(), "k", filepath.Join(t.TempDir(), "gone.sql"), nil)
	if err == nil {
		t.Fatal("expected error for missing artifact, got nil")
	}
	if !strings.Contains(err.Error(), "open artifact") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProbeListsSingleKey(t *testing.T) {
	fake := &fakeAPI{}
	c := newTestClient(fake)

	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("Probe unexpected error: %v", err)
	}
	if fake.listInput == nil {
		t.Fatal("ListObjectsV2 was not called")
	}
	if *fake.listInput.MaxKeys != 1 {
		t.Fatalf("MaxKeys: got %d want 1", *fake.listInput.MaxKeys)
	}
}
