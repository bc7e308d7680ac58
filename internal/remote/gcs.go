// Package remote provides storage clients implementing product.Client.
package remote

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/aristath/pipeline/internal/product"
)

// GCSClient fetches product metadata from a Google Cloud Storage bucket.
// Product paths are used as object names within the bucket.
type GCSClient struct {
	client *storage.Client
	bucket string
}

// NewGCSClient creates a client for the given bucket. credentialsFile may be
// empty, in which case application default credentials are used.
func NewGCSClient(ctx context.Context, bucket, credentialsFile string) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	return &GCSClient{client: client, bucket: bucket}, nil
}

// Bucket returns the bucket this client reads from.
func (c *GCSClient) Bucket() string {
	return c.bucket
}

// FetchMetadata reads the object's attributes. A missing object is not an
// error: it reports Exists=false so the runner can mark the product stale.
func (c *GCSClient) FetchMetadata(ctx context.Context, path string) (product.Metadata, error) {
	attrs, err := c.client.Bucket(c.bucket).Object(path).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return product.Metadata{Exists: false}, nil
	}
	if err != nil {
		return product.Metadata{}, fmt.Errorf("reading attributes of gs://%s/%s: %w", c.bucket, path, err)
	}

	return product.Metadata{
		Exists:    true,
		Hash:      hex.EncodeToString(attrs.MD5),
		Timestamp: attrs.Updated,
	}, nil
}

// Close releases the underlying storage client.
func (c *GCSClient) Close() error {
	return c.client.Close()
}
