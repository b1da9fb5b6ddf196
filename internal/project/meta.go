package project

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Meta is the configuration that produced the current index. Review
// re-derives chunks from it, so every field that affects chunking is stored.
type Meta struct {
	SourceFile           string  `json:"source_file" validate:"required"`
	PresetName           string  `json:"preset_name" validate:"required"`
	Voice                string  `json:"voice" validate:"required"`
	ChapterStrategy      string  `json:"chapter_strategy" validate:"required,oneof=auto markdown structured heuristic paragraph none"`
	ChapterMinConfidence float64 `json:"chapter_min_confidence" validate:"gte=0"`
	TargetChunkSecs      float64 `json:"target_chunk_secs" validate:"gt=0"`
}

// Validate reports missing or out-of-range fields as ErrInvalidMeta.
func (m Meta) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	return nil
}

// SaveMeta replaces the stored metadata.
func (p *Project) SaveMeta(m Meta) error {
	return p.writeJSON(metaFile, m)
}

// LoadMeta returns the stored metadata or ErrMetaNotFound.
func (p *Project) LoadMeta() (Meta, error) {
	var m Meta
	ok, err := p.readJSON(metaFile, &m)
	if err != nil {
		return Meta{}, err
	}
	if !ok {
		return Meta{}, ErrMetaNotFound
	}
	return m, nil
}
