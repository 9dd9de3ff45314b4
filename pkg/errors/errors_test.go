package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeEmptyFile, "empty text file: %s", "001_a.txt")

	if err.Code != ErrCodeEmptyFile {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeEmptyFile)
	}
	if !strings.Contains(err.Error(), "EMPTY_FILE") {
		t.Errorf("Error() should contain code, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "001_a.txt") {
		t.Errorf("Error() should contain formatted message, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("short read")
	err := Wrap(ErrCodeDecode, cause, "failed to decode %s", "clip.wav")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "short read") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeUnknownSpeaker, "unrecognized speaker")

	if !Is(err, ErrCodeUnknownSpeaker) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeEmptyFile) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeUnknownSpeaker) {
		t.Error("Is should not match plain errors")
	}

	// Code is found through wrapping layers.
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeUnknownSpeaker) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeFieldMissing, "no hash column")); got != ErrCodeFieldMissing {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeFieldMissing)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no such directory: voice/")
	if got := UserMessage(err); got != "no such directory: voice/" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
