// Package storage publishes finished audiobook artifacts. It defines the
// Storage interface (port) and implementations for a local directory and S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ErrInvalidKey is returned for empty keys or keys escaping the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage defines where published artifacts go.
type Storage interface {
	// Publish stores data under key and returns a URL for it.
	// Publishing the same key again replaces the previous object.
	Publish(ctx context.Context, key string, data io.Reader) (url string, err error)
}

// PublishFile publishes the file at filePath under key.
func PublishFile(ctx context.Context, s Storage, key, filePath string) (string, error) {
	f, err := os.Open(filePath) // #nosec G304 - path is provided by trusted internal code
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.Publish(ctx, key, f)
}

// cleanKey normalizes key to a relative slash path and rejects traversal.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if key == "" || cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
