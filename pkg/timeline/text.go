package timeline

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// LineBreak is the explicit line-break marker inserted between wrapped text
// chunks. It is a literal backslash-n, not a newline: the text column is
// meant for embedding in subtitle markup where "\n" is the break sequence.
const LineBreak = `\n`

// ExtraColumn declares an additional column attached to every text record
// with a default value, e.g. {"slide", 0} or {"status", "n"}.
type ExtraColumn struct {
	Name    string
	Default any
}

// TextOption configures BuildText.
type TextOption func(*textBuilder)

type textBuilder struct {
	speakers SpeakerTable
}

// WithSpeakers overrides the default speaker table.
func WithSpeakers(t SpeakerTable) TextOption {
	return func(b *textBuilder) { b.speakers = t }
}

// BuildText scans dir for .txt files exported by the synthesizer and builds
// one record per file, in lexicographic filename order. Each record has:
//
//   - character: canonical speaker id parsed from the filename, which follows
//     the convention <index>_<speaker>（<variant>）.txt
//   - hash: first 6 hex characters of the SHA-1 of the file content, the
//     identity key used by Reconcile across re-exports
//   - text: the content wrapped into rune chunks of maxTextLength, joined
//     by LineBreak
//   - one column per entry of extras, holding its default value
//
// Empty files and unrecognized speaker labels abort the build.
func BuildText(dir string, maxTextLength int, extras []ExtraColumn, opts ...TextOption) (Timeline, error) {
	if maxTextLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "maxTextLength must be positive, got %d", maxTextLength)
	}
	b := textBuilder{speakers: DefaultSpeakers()}
	for _, opt := range opts {
		opt(&b)
	}

	paths, err := listFiles(dir, ".txt")
	if err != nil {
		return nil, err
	}

	var t Timeline
	for _, path := range paths {
		rec, err := b.record(path, maxTextLength, extras)
		if err != nil {
			return nil, err
		}
		t = append(t, rec)
	}
	return t, nil
}

// record builds the timeline record for a single text file.
func (b textBuilder) record(path string, maxTextLength int, extras []ExtraColumn) (Record, error) {
	raw, err := readText(path)
	if err != nil {
		return Record{}, err
	}
	if raw == "" {
		return Record{}, errors.New(errors.ErrCodeEmptyFile, "empty text file: %s, remove it and retry", path)
	}

	label, err := speakerLabel(path)
	if err != nil {
		return Record{}, err
	}
	character, err := b.speakers.Resolve(label)
	if err != nil {
		return Record{}, err
	}

	rec := NewRecord()
	rec.Set("character", character)
	rec.Set("hash", hashPrefix(raw))
	rec.Set("text", wrapText(raw, maxTextLength))
	for _, c := range extras {
		rec.Set(c.Name, c.Default)
	}
	return rec, nil
}

// readText reads a file as UTF-8 text, stripping a leading BOM if present.
// The synthesizer writes its text exports with a BOM.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}

// speakerLabel extracts the raw speaker label from an exported filename.
// "001_ずんだもん（ノーマル）.txt" yields "ずんだもん".
func speakerLabel(path string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	_, after, found := strings.Cut(stem, "_")
	if !found || after == "" {
		return "", errors.New(errors.ErrCodeUnknownSpeaker,
			"filename %s does not follow <index>_<speaker>（<variant>） convention", filepath.Base(path))
	}
	label, _, _ := strings.Cut(after, "（")
	return label, nil
}

// hashPrefix returns the 6-character hex prefix of the SHA-1 of text.
// Short but unique enough to identify a speaker turn across re-exports.
func hashPrefix(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:6]
}

// wrapText splits text into rune chunks of at most width, joined by the
// explicit LineBreak marker. Splitting is by runes so multibyte scripts wrap
// at the same visual length as ASCII.
func wrapText(text string, width int) string {
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += width {
		end := min(i+width, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return strings.Join(chunks, LineBreak)
}

// listFiles returns the files in dir with the given extension,
// sorted lexicographically by filename.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "directory %s", dir)
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
