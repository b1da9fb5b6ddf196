package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned when a file extension has no loader.
var ErrUnsupportedFormat = errors.New("document: unsupported source format")

// Loader turns a source file into a Document.
type Loader interface {
	Load(ctx context.Context, path string) (*Document, error)
}

// FileLoader dispatches on file extension: .txt and .md are read as UTF-8,
// .epub is unpacked and flattened in spine order.
type FileLoader struct{}

// Compile-time check that FileLoader implements Loader.
var _ Loader = FileLoader{}

// NewFileLoader returns the default Loader.
func NewFileLoader() FileLoader {
	return FileLoader{}
}

// Load reads path and returns its Document.
func (FileLoader) Load(ctx context.Context, path string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return loadText(path)
	case ".epub":
		return loadEPUB(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadText(path string) (*Document, error) {
	b, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	text := string(b)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.TrimPrefix(text, "\ufeff")
	return New(stem(path), text), nil
}

// stem returns the file name without directory and extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
