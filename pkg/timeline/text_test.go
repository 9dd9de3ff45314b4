package timeline

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// writeTxt drops a text file into dir.
func writeTxt(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildText(t *testing.T) {
	dir := t.TempDir()
	writeTxt(t, dir, "001_ずんだもん（ノーマル）.txt", "hello")

	tl, err := BuildText(dir, 25, nil)
	if err != nil {
		t.Fatalf("BuildText: %v", err)
	}
	if len(tl) != 1 {
		t.Fatalf("got %d records, want 1", len(tl))
	}

	rec := tl[0]
	if got := rec.String("character"); got != "zunda" {
		t.Errorf("character = %q, want zunda", got)
	}
	hash := rec.String("hash")
	if !regexp.MustCompile(`^[0-9a-f]{6}$`).MatchString(hash) {
		t.Errorf("hash = %q, want 6 lowercase hex chars", hash)
	}
	if got := rec.String("text"); got != "hello" {
		t.Errorf("text = %q, want hello", got)
	}
}

func TestBuildTextOrderAndExtras(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; output must follow filename order.
	writeTxt(t, dir, "002_四国めたん（ノーマル）.txt", "second")
	writeTxt(t, dir, "001_ずんだもん（ノーマル）.txt", "first")

	extras := []ExtraColumn{{"slide", 0}, {"status", "n"}}
	tl, err := BuildText(dir, 25, extras)
	if err != nil {
		t.Fatalf("BuildText: %v", err)
	}
	if len(tl) != 2 {
		t.Fatalf("got %d records, want 2", len(tl))
	}
	if got := tl[0].String("character"); got != "zunda" {
		t.Errorf("record 0 character = %q, want zunda", got)
	}
	if got := tl[1].String("character"); got != "metan" {
		t.Errorf("record 1 character = %q, want metan", got)
	}

	for i, rec := range tl {
		if v, _ := rec.Get("slide"); v != 0 {
			t.Errorf("record %d slide = %v, want 0", i, v)
		}
		if got := rec.String("status"); got != "n" {
			t.Errorf("record %d status = %q, want n", i, got)
		}
	}
}

func TestBuildTextWrapping(t *testing.T) {
	dir := t.TempDir()
	// 7 runes of multibyte text wrapped at 3 → 3 chunks.
	writeTxt(t, dir, "001_ずんだもん（ノーマル）.txt", "あいうえおかき")

	tl, err := BuildText(dir, 3, nil)
	if err != nil {
		t.Fatalf("BuildText: %v", err)
	}

	want := `あいう\nえおか\nき`
	if got := tl[0].String("text"); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	// The marker is a literal backslash-n, never a real newline.
	if strings.Contains(tl[0].String("text"), "\n") {
		t.Error("wrapped text must not contain native line terminators")
	}
}

func TestBuildTextHashIgnoresWrapping(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeTxt(t, dirA, "001_ずんだもん（ノーマル）.txt", "あいうえおかき")
	writeTxt(t, dirB, "001_ずんだもん（ノーマル）.txt", "あいうえおかき")

	a, err := BuildText(dirA, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildText(dirB, 25, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The hash keys identity across re-exports; the wrap width is
	// presentation and must not affect it.
	if a[0].String("hash") != b[0].String("hash") {
		t.Errorf("hash depends on wrap width: %q vs %q", a[0].String("hash"), b[0].String("hash"))
	}
}

func TestBuildTextStripsBOM(t *testing.T) {
	dir := t.TempDir()
	writeTxt(t, dir, "001_ずんだもん（ノーマル）.txt", "\uFEFFhello")

	tl, err := BuildText(dir, 25, nil)
	if err != nil {
		t.Fatalf("BuildText: %v", err)
	}
	if got := tl[0].String("text"); got != "hello" {
		t.Errorf("text = %q, BOM should be stripped", got)
	}
}

func TestBuildTextEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeTxt(t, dir, "001_ずんだもん（ノーマル）.txt", "")

	_, err := BuildText(dir, 25, nil)
	if !errors.Is(err, errors.ErrCodeEmptyFile) {
		t.Errorf("want EMPTY_FILE error, got %v", err)
	}
}

func TestBuildTextUnknownSpeaker(t *testing.T) {
	dir := t.TempDir()
	writeTxt(t, dir, "001_謎のキャラ（ノーマル）.txt", "hello")

	_, err := BuildText(dir, 25, nil)
	if !errors.Is(err, errors.ErrCodeUnknownSpeaker) {
		t.Errorf("want UNKNOWN_SPEAKER error, got %v", err)
	}
}

func TestBuildTextMissingDir(t *testing.T) {
	_, err := BuildText(filepath.Join(t.TempDir(), "nope"), 25, nil)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("want FILE_NOT_FOUND error, got %v", err)
	}
}

func TestBuildTextCustomSpeakers(t *testing.T) {
	dir := t.TempDir()
	writeTxt(t, dir, "001_ナレーター（通常）.txt", "intro")

	table := SpeakerTable{"ナレーター": "narrator"}
	tl, err := BuildText(dir, 25, nil, WithSpeakers(table))
	if err != nil {
		t.Fatalf("BuildText: %v", err)
	}
	if got := tl[0].String("character"); got != "narrator" {
		t.Errorf("character = %q, want narrator", got)
	}
}

func TestLoadSpeakers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speakers.toml")
	content := "[speakers]\n\"ずんだもん\" = \"zunda\"\n\"ナレーター\" = \"narrator\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadSpeakers(path)
	if err != nil {
		t.Fatalf("LoadSpeakers: %v", err)
	}
	id, err := table.Resolve("ナレーター")
	if err != nil || id != "narrator" {
		t.Errorf("Resolve = %q, %v", id, err)
	}
	if _, err := table.Resolve("四国めたん"); !errors.Is(err, errors.ErrCodeUnknownSpeaker) {
		t.Errorf("labels absent from a custom table should be unknown, got %v", err)
	}
}

func TestLoadSpeakersMissing(t *testing.T) {
	_, err := LoadSpeakers(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("want FILE_NOT_FOUND error, got %v", err)
	}
}
