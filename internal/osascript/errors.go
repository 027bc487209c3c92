package osascript

import (
	"errors"
	"strings"
)

// ErrorKind classifies an automation failure.
type ErrorKind string

const (
	// KindExecution is any failure that is not a permission refusal.
	KindExecution ErrorKind = "execution"

	// KindPermissionDenied means macOS refused to let this process send Apple
	// events to the calendar application.
	KindPermissionDenied ErrorKind = "permission_denied"
)

// errPrefix starts every automation error message.
const errPrefix = "AppleScript error: "

// Markers that identify a permission refusal in osascript output.
var permissionDeniedMarkers = []string{
	"-1743",
	"Not authorised to send Apple events to Calendar",
	"Not authorized to send Apple events to Calendar",
}

// Error represents a failed automation run.
type Error struct {
	// Kind is computed once from the raw stderr and exit error.
	Kind ErrorKind

	// Mode is the execution mode that failed.
	Mode Mode

	// Stderr is the trimmed standard-error text, possibly empty.
	Stderr string

	// Err is the underlying process error, possibly nil.
	Err error
}

// newError builds an Error and classifies it.
func newError(mode Mode, stderr string, err error) *Error {
	e := &Error{
		Kind:   KindExecution,
		Mode:   mode,
		Stderr: stderr,
		Err:    err,
	}
	if isPermissionText(e.detail()) || (err != nil && isPermissionText(err.Error())) {
		e.Kind = KindPermissionDenied
	}
	return e
}

func (e *Error) detail() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown failure"
}

// Error implements the error interface.
func (e *Error) Error() string {
	return errPrefix + e.detail()
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermissionDenied reports whether err carries a permission-denied
// automation failure anywhere in its chain.
func IsPermissionDenied(err error) bool {
	var automationErr *Error
	if errors.As(err, &automationErr) {
		return automationErr.Kind == KindPermissionDenied
	}
	return false
}

// KindOf returns the kind of the automation failure in err's chain, or the
// empty string if err is not an automation failure.
func KindOf(err error) ErrorKind {
	var automationErr *Error
	if errors.As(err, &automationErr) {
		return automationErr.Kind
	}
	return ""
}

func isPermissionText(text string) bool {
	for _, marker := range permissionDeniedMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
