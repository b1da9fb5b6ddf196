package project

import "slices"

// IndexEntry records one synthesized chunk.
type IndexEntry struct {
	ID               int     `json:"id"`
	ChapterIndex     int     `json:"chapter_index"`
	RelativeIndex    int     `json:"relative_index"`
	AudioFile        string  `json:"audio_file"`
	Text             string  `json:"text"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
}

// SaveIndex replaces the stored index with entries, ordered by id.
// There is no partial update: callers always pass the full list.
func (p *Project) SaveIndex(entries []IndexEntry) error {
	sorted := SortedByID(entries)
	if sorted == nil {
		sorted = []IndexEntry{}
	}
	return p.writeJSON(indexFile, sorted)
}

// LoadIndex returns the last saved index, or an empty index if none exists.
func (p *Project) LoadIndex() ([]IndexEntry, error) {
	var entries []IndexEntry
	if _, err := p.readJSON(indexFile, &entries); err != nil {
		return nil, err
	}
	return SortedByID(entries), nil
}

// SortedByID returns a copy of entries ordered by ascending id.
func SortedByID(entries []IndexEntry) []IndexEntry {
	if len(entries) == 0 {
		return nil
	}
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b IndexEntry) int { return a.ID - b.ID })
	return out
}

// FindEntry returns the entry with the given id.
func FindEntry(entries []IndexEntry, id int) (IndexEntry, bool) {
	i := slices.IndexFunc(entries, func(e IndexEntry) bool { return e.ID == id })
	if i < 0 {
		return IndexEntry{}, false
	}
	return entries[i], true
}
