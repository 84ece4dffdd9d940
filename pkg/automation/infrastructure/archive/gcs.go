package archive

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// GCSStorage writes archive objects to a Google Cloud Storage bucket using
// application default credentials.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

var _ Storage = (*GCSStorage)(nil)

// NewGCSStorage creates a GCS-backed archive storage for the given bucket.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs archive storage: bucket must be specified")
	}
	client, err := gcs.NewClient(ctx, option.WithScopes(gcs.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("gcs archive storage: failed to create client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

// Upload streams the object into the bucket.
func (s *GCSStorage) Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object 'gs://%s/%s': %w", s.bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object 'gs://%s/%s': %w", s.bucket, objectName, err)
	}
	logger.Debugf("Archived object to 'gs://%s/%s'.", s.bucket, objectName)
	return nil
}

// Close closes the GCS client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
