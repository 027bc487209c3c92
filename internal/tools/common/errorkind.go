package common

import (
	"context"
	"sync"
)

// Error kinds reported by tool handlers in addition to the automation kinds.
const (
	ErrorKindInvalidArgument = "invalid_argument"
	ErrorKindUnknownTool     = "unknown_tool"
)

type errorKindKey struct{}

type errorKindHolder struct {
	mu   sync.Mutex
	kind string
}

// WithErrorKind returns a context that can carry an error kind back from a
// handler to the instrumentation wrapper.
func WithErrorKind(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorKindKey{}, &errorKindHolder{})
}

// RecordErrorKind stores kind on ctx. It does nothing if ctx was not prepared
// with WithErrorKind. The first recorded kind wins.
func RecordErrorKind(ctx context.Context, kind string) {
	h, ok := ctx.Value(errorKindKey{}).(*errorKindHolder)
	if !ok || kind == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind == "" {
		h.kind = kind
	}
}

// ErrorKind returns the kind recorded on ctx, or "".
func ErrorKind(ctx context.Context) string {
	h, ok := ctx.Value(errorKindKey{}).(*errorKindHolder)
	if !ok {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kind
}
