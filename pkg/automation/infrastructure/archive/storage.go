// Package archive exports the audit trail of finished automation sessions as
// Parquet objects to a configurable storage backend.
package archive

import (
	"context"
	"fmt"
	"io"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
)

// Storage is the destination for exported archive objects.
type Storage interface {
	// Upload writes one object under the given name.
	Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error
	// Close releases any resources held by the backend.
	Close() error
}

// NewStorage builds the storage backend selected by the archive configuration.
func NewStorage(cfg *config.ArchiveConfig) (Storage, error) {
	switch cfg.StorageType {
	case "local":
		return NewLocalStorage(cfg.LocalDir)
	case "gcs":
		return NewGCSStorage(context.Background(), cfg.Bucket)
	default:
		return nil, fmt.Errorf("unsupported archive storage type: %s", cfg.StorageType)
	}
}
