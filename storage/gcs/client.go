// Package gcs stores clausewise artifacts and raw documents in a Google Cloud
// Storage bucket.
//
// Objects are laid out the way the ingestion pipeline names them:
//
//	raw/<base>.pdf            raw documents (read-only here)
//	markdown/<base>.md        converted markdown
//	sections/title_<base>.json
//	clauses/<base>.json
//
// Artifact bodies are stored verbatim so the bucket stays readable with
// ordinary tools; digests and insertion time travel in object metadata.
package gcs

import (
	"context"
	"fmt"
	"os"
	"strings"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Config locates the bucket.
type Config struct {
	Bucket          string
	CredentialsFile string // optional; application default credentials when empty
	Prefix          string // optional key prefix, e.g. "tenants/acme"
}

// Client owns a Cloud Storage client bound to one bucket.
type Client struct {
	storageClient *gcstorage.Client
	bucket        string
	prefix        string
}

// NewClient creates a Cloud Storage client for cfg.Bucket.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		info, err := os.Stat(cfg.CredentialsFile)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", cfg.CredentialsFile)
		}
		if err == nil && info.IsDir() {
			return nil, fmt.Errorf("service account key path is a directory: %s", cfg.CredentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	storageClient, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{
		storageClient: storageClient,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

func (c *Client) store() objectStore {
	return &bucketStore{
		bucket: c.storageClient.Bucket(c.bucket),
		prefix: c.prefix,
	}
}
