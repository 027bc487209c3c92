// Package common provides shared helpers for MCP tool handlers.
//
// InstrumentedToolHandler wraps a handler with a tool span, metrics and an
// audit record. Handlers report how a call failed with RecordErrorKind so the
// audit record can carry it.
package common
