package s3store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Options configure a Client against any S3-compatible endpoint. An empty
// Endpoint uses the AWS default for the region.
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// api is the subset of the SDK client the Client uses; tests install a fake.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Client talks to one bucket. The SDK client is built lazily on the first
// call, so constructing a Client is free and each run can hold a fresh one.
type Client struct {
	opt Options

	mu  sync.Mutex
	cli api
}

func New(opt Options) *Client {
	return &Client{opt: opt}
}

func (c *Client) load(ctx context.Context) (api, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cli != nil {
		return c.cli, nil
	}

	creds := credentials.NewStaticCredentialsProvider(c.opt.AccessKey, c.opt.SecretKey, "")
	cfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(c.opt.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	c.cli = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.opt.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.opt.Endpoint)
		}
		// R2 and most S3-compatible stores want path-style addressing when an
		// explicit endpoint is set.
		o.UsePathStyle = c.opt.Endpoint != ""
	})
	return c.cli, nil
}

// PutFile uploads the file at localPath under key, attaching metadata
// verbatim. An existing object under the same key is overwritten.
func (c *Client) PutFile(ctx context.Context, key, localPath string, metadata map[string]string) error {
	cli, err := c.load(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	_, err = cli.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.opt.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		Metadata:      metadata,
	})
	if err != nil {
		return classify("put object", err)
	}
	return nil
}

// Probe issues a minimal list request to verify endpoint, credentials and
// bucket existence.
func (c *Client) Probe(ctx context.Context) error {
	cli, err := c.load(ctx)
	if err != nil {
		return err
	}

	_, err = cli.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.opt.Bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return classify("list objects", err)
	}
	return nil
}

func classify(op string, err error) error {
	if apiErr, ok := err.(smithy.APIError); ok {
		return fmt.Errorf("%s: %s: %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%s: %w", op, err)
}
