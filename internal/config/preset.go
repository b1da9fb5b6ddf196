package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrPresetInvalid is returned when a preset file cannot be parsed or holds
// out-of-range values.
var ErrPresetInvalid = errors.New("config: invalid preset")

// DefaultPresetName is used when no preset is requested.
const DefaultPresetName = "calm_longform"

//go:embed presets/*.yaml
var embeddedPresets embed.FS

// Preset controls voice and pacing of the narration.
type Preset struct {
	Name            string  `yaml:"-" json:"name"`
	Voice           string  `yaml:"voice" json:"voice" validate:"required"`
	Rate            float64 `yaml:"rate" json:"rate" validate:"gt=0"`
	Pitch           float64 `yaml:"pitch" json:"pitch"`
	// PauseShort is parsed for preset compatibility but not applied yet.
	PauseShort      float64 `yaml:"pause_short" json:"pause_short" validate:"gte=0"`
	PausePara       float64 `yaml:"pause_para" json:"pause_para" validate:"gte=0"`
	PauseChapter    float64 `yaml:"pause_chapter" json:"pause_chapter" validate:"gte=0"`
	Seed            int     `yaml:"seed" json:"seed"`
	TargetChunkSecs float64 `yaml:"target_chunk_secs" json:"target_chunk_secs" validate:"gte=1"`
}

// DefaultPreset returns the built-in pacing with the given voice.
func DefaultPreset(voice string) Preset {
	return Preset{
		Name:            voice,
		Voice:           voice,
		Rate:            1.0,
		PauseShort:      0.3,
		PausePara:       1.2,
		PauseChapter:    3.0,
		Seed:            42,
		TargetChunkSecs: 30,
	}
}

// LoadPreset resolves a preset by name. It looks for <dir>/<name>.yaml, then
// for an embedded preset, and otherwise returns DefaultPreset with the name
// used as the voice.
func LoadPreset(dir, name string) (Preset, error) {
	if name == "" {
		name = DefaultPresetName
	}

	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name+".yaml")) // #nosec G304 - operator-provided preset dir
		switch {
		case err == nil:
			return parsePreset(name, data)
		case !errors.Is(err, fs.ErrNotExist):
			return Preset{}, fmt.Errorf("read preset %q: %w", name, err)
		}
	}

	data, err := embeddedPresets.ReadFile("presets/" + name + ".yaml")
	if err == nil {
		return parsePreset(name, data)
	}

	return DefaultPreset(name), nil
}

func parsePreset(name string, data []byte) (Preset, error) {
	p := DefaultPreset("")
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("%w: %s: %v", ErrPresetInvalid, name, err)
	}
	p.Name = name
	if err := validate.Struct(p); err != nil {
		return Preset{}, fmt.Errorf("%w: %s: %v", ErrPresetInvalid, name, err)
	}
	return p, nil
}
