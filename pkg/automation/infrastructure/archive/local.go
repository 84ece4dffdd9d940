package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// LocalStorage writes archive objects under a base directory on the local
// file system. Object names map to relative file paths.
type LocalStorage struct {
	baseDir string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage validates the base directory and creates it if missing.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local archive storage: base directory must be specified")
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("local archive storage: failed to stat '%s': %w", baseDir, err)
		}
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, fmt.Errorf("local archive storage: failed to create '%s': %w", baseDir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("local archive storage: '%s' is not a directory", baseDir)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Upload writes the object to a file under the base directory.
func (s *LocalStorage) Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error {
	fullPath, err := s.resolvePath(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", fullPath, err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return fmt.Errorf("failed to write data to '%s': %w", fullPath, err)
	}
	logger.Debugf("Archived object to '%s'.", fullPath)
	return nil
}

// Close does nothing for the local file system backend.
func (s *LocalStorage) Close() error {
	return nil
}

// resolvePath joins the object name onto the base directory and rejects
// names that escape it.
func (s *LocalStorage) resolvePath(objectName string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(s.baseDir, filepath.FromSlash(objectName)))
	base := filepath.Clean(s.baseDir)
	if cleaned != base && !strings.HasPrefix(cleaned, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("object name '%s' escapes the archive base directory", objectName)
	}
	return cleaned, nil
}
