package book

import (
	"errors"
	"fmt"
)

// BookChapterIndex is the StitchError.ChapterIndex of the book-level stitch.
const BookChapterIndex = -1

// Static errors for book operations.
var (
	// ErrChunkNotFound is returned when a reviewed chunk id is not in the index.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrMissingMetadata is returned when project metadata needed to re-derive
	// chunks is absent or incomplete.
	ErrMissingMetadata = errors.New("missing project metadata")
	// ErrInputRequired is returned when Process is called without a source file.
	ErrInputRequired = errors.New("input file is required")
)

// SynthesisError reports a failed chunk synthesis.
type SynthesisError struct {
	ChunkID int
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize chunk %d: %v", e.ChunkID, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// StitchError reports a failed chapter or book stitch.
type StitchError struct {
	// ChapterIndex is the chapter being stitched, or BookChapterIndex.
	ChapterIndex int
	Err          error
}

func (e *StitchError) Error() string {
	if e.ChapterIndex == BookChapterIndex {
		return fmt.Sprintf("stitch book: %v", e.Err)
	}
	return fmt.Sprintf("stitch chapter %d: %v", e.ChapterIndex, e.Err)
}

func (e *StitchError) Unwrap() error {
	return e.Err
}
