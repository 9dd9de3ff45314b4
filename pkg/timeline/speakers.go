package timeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// SpeakerTable maps the synthesizer's raw speaker labels (as they appear in
// exported filenames) to canonical short identifiers used in the
// "character" column.
type SpeakerTable map[string]string

// DefaultSpeakers returns the table for the three stock Voicevox voices.
func DefaultSpeakers() SpeakerTable {
	return SpeakerTable{
		"ずんだもん":  "zunda",
		"四国めたん":  "metan",
		"春日部つむぎ": "tsumugi",
	}
}

// Resolve maps a raw label to its canonical identifier.
// Unrecognized labels are an error: a typo in a filename should abort the
// build rather than silently drop a speaker turn.
func (t SpeakerTable) Resolve(label string) (string, error) {
	id, ok := t[label]
	if !ok {
		return "", errors.New(errors.ErrCodeUnknownSpeaker, "unrecognized speaker label: %q", label)
	}
	return id, nil
}

// speakersFile is the on-disk TOML shape for a custom speaker table.
type speakersFile struct {
	Speakers map[string]string `toml:"speakers"`
}

// LoadSpeakers reads a speaker table from a TOML file:
//
//	[speakers]
//	"ずんだもん" = "zunda"
//	"四国めたん" = "metan"
//
// This keeps the label set configuration, not code: new voices do not
// require a rebuild.
func LoadSpeakers(path string) (SpeakerTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "speaker table %s", path)
		}
		return nil, err
	}
	var f speakersFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "speaker table %s", path)
	}
	if len(f.Speakers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "speaker table %s has no [speakers] entries", path)
	}
	return SpeakerTable(f.Speakers), nil
}
