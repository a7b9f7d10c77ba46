package storage

import (
	"context"
	"fmt"

	"github.com/bsource/dbbackup/internal/config"
	s3store "github.com/bsource/dbbackup/internal/storage/s3"
)

// r2Region is fixed for Cloudflare R2; the endpoint carries the account.
const r2Region = "auto"

// FromConfig maps the provider tag to a Storage. This is the only place
// provider dispatch happens; callers construct one Storage per run so the
// underlying client never outlives a job.
func FromConfig(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "r2":
		if cfg.EndpointURL == "" {
			return nil, fmt.Errorf("storage r2: STORAGE_ENDPOINT_URL is required")
		}
		client := s3store.New(s3store.Options{
			Endpoint:  cfg.EndpointURL,
			Region:    r2Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
		})
		return &bucketStorage{tag: "r2", folder: cfg.DestinationFolder, client: client}, nil
	case "s3":
		if cfg.Region == "" {
			return nil, fmt.Errorf("storage s3: STORAGE_REGION is required")
		}
		client := s3store.New(s3store.Options{
			Endpoint:  cfg.EndpointURL, // optional for AWS
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
		})
		return &bucketStorage{tag: "s3", folder: cfg.DestinationFolder, client: client}, nil
	default:
		return nil, fmt.Errorf("STORAGE_TYPE %q not supported (accepted: %v)", cfg.Type, config.SupportedStorageTypes)
	}
}

// objectClient is the slice of the s3 client bucketStorage needs; tests
// substitute a fake.
type objectClient interface {
	PutFile(ctx context.Context, key, localPath string, metadata map[string]string) error
	Probe(ctx context.Context) error
}

// bucketStorage adapts the provider-neutral s3 client to the Storage
// contract: it owns key computation and error classification.
type bucketStorage struct {
	tag    string
	folder string
	client objectClient
}

func (b *bucketStorage) Provider() string { return b.tag }

func (b *bucketStorage) Upload(ctx context.Context, req UploadRequest) (string, error) {
	key := ObjectKey(b.folder, req.PartitionDate, req.Filename)
	if err := b.client.PutFile(ctx, key, req.LocalPath, req.Metadata); err != nil {
		return "", &Error{Provider: b.tag, Cause: err}
	}
	return key, nil
}

func (b *bucketStorage) Check(ctx context.Context) error {
	if err := b.client.Probe(ctx); err != nil {
		return &Error{Provider: b.tag, Cause: err}
	}
	return nil
}
