package osascript

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewError_Classification(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		err    error
		want   ErrorKind
	}{
		{"numeric code", "execution error: (-1743)", nil, KindPermissionDenied},
		{"british spelling", "Not authorised to send Apple events to Calendar.", nil, KindPermissionDenied},
		{"american spelling", "Not authorized to send Apple events to Calendar.", nil, KindPermissionDenied},
		{"code only in exit error", "", errors.New("osascript: -1743"), KindPermissionDenied},
		{"unrelated", "file not found", nil, KindExecution},
		{"exit error only", "", errors.New("exit status 1"), KindExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newError(ModeProgram, tt.stderr, tt.err)
			if got.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"stderr preferred", newError(ModeStatement, "boom", errors.New("exit status 1")), "AppleScript error: boom"},
		{"falls back to exit error", newError(ModeStatement, "", errors.New("exit status 1")), "AppleScript error: exit status 1"},
		{"no detail", newError(ModeStatement, "", nil), "AppleScript error: unknown failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPermissionDenied_Wrapped(t *testing.T) {
	denied := fmt.Errorf("list events: %w", newError(ModeProgram, "(-1743)", nil))
	if !IsPermissionDenied(denied) {
		t.Error("expected wrapped permission error to be detected")
	}

	other := fmt.Errorf("list events: %w", newError(ModeProgram, "file not found", nil))
	if IsPermissionDenied(other) {
		t.Error("unrelated failure classified as permission denied")
	}

	if IsPermissionDenied(errors.New("-1743")) {
		t.Error("plain errors are never classified")
	}
	if KindOf(errors.New("x")) != "" {
		t.Error("KindOf should be empty for non-automation errors")
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("exit status 1")
	err := newError(ModeURL, "", base)
	if !errors.Is(err, base) {
		t.Error("expected errors.Is to reach the process error")
	}
}
