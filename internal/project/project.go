// Package project owns the on-disk layout of an audiobook project: the chunk
// index, the metadata that produced it, and the audio artifacts.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	indexFile   = "index.json"
	metaFile    = "meta.json"
	chunksDir   = "chunks"
	chaptersDir = "chapters"
	bookFile    = "book.wav"
)

var (
	// ErrMetaNotFound is returned by LoadMeta when no metadata was saved yet.
	ErrMetaNotFound = errors.New("project metadata not found")

	// ErrInvalidMeta is returned when saved metadata is missing required fields.
	ErrInvalidMeta = errors.New("project metadata is incomplete")
)

// Project is a directory holding one book's index, metadata and audio.
type Project struct {
	root string
}

// Open returns the project rooted at dir, creating its directories.
func Open(dir string) (*Project, error) {
	for _, d := range []string{dir, filepath.Join(dir, chunksDir), filepath.Join(dir, chaptersDir)} {
		if err := os.MkdirAll(d, 0750); err != nil {
			return nil, fmt.Errorf("create project directory: %w", err)
		}
	}
	return &Project{root: dir}, nil
}

// Root returns the project directory.
func (p *Project) Root() string { return p.root }

// ChunkFileName returns the deterministic audio file name of a chunk.
func ChunkFileName(id int) string {
	return fmt.Sprintf("chunk_%05d.wav", id)
}

// ChunkPath resolves an index entry's audio file name.
func (p *Project) ChunkPath(fileName string) string {
	return filepath.Join(p.root, chunksDir, fileName)
}

// ChapterPath returns the path of a stitched chapter artifact.
func (p *Project) ChapterPath(chapterIndex int) string {
	return filepath.Join(p.root, chaptersDir, fmt.Sprintf("chapter_%03d.wav", chapterIndex))
}

// BookPath returns the path of the stitched book artifact.
func (p *Project) BookPath() string {
	return filepath.Join(p.root, bookFile)
}

// writeJSON replaces name atomically so readers never see a partial file.
func (p *Project) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	f, err := os.CreateTemp(p.root, name+".tmp_*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(p.root, name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// readJSON decodes name into v. It reports false when the file is absent.
func (p *Project) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(p.root, name)) // #nosec G304 - fixed name inside project dir
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}
