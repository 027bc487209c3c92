package instrumentation

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures one MCP tool call for audit logging.
//
// # Privacy Considerations
//
// Arguments may hold event sentences, notes and search queries. They are only
// written verbatim when the audit logger is configured with IncludeArguments;
// otherwise only the argument names appear in the record.
type ToolInvocation struct {
	// Tool name
	Tool string

	// RequestID correlates the audit record with the tool and automation logs.
	RequestID string

	// Arguments as received from the client.
	Arguments map[string]any

	// ErrorKind classifies failures (e.g. "permission_denied", "execution").
	ErrorKind string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewToolInvocation creates a new ToolInvocation with a fresh request ID and
// timing started. Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		RequestID: uuid.NewString(),
		StartTime: time.Now(),
	}
}

// WithArguments records the raw tool arguments.
func (ti *ToolInvocation) WithArguments(args map[string]any) *ToolInvocation {
	ti.Arguments = args
	return ti
}

// WithErrorKind sets the failure classification.
func (ti *ToolInvocation) WithErrorKind(kind string) *ToolInvocation {
	ti.ErrorKind = kind
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// ArgumentNames returns the sorted argument keys.
func (ti *ToolInvocation) ArgumentNames() []string {
	names := make([]string, 0, len(ti.Arguments))
	for name := range ti.Arguments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LogAttrs returns slog attributes for the invocation. Argument values are
// included only when includeArguments is set.
func (ti *ToolInvocation) LogAttrs(includeArguments bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("request_id", ti.RequestID),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if len(ti.Arguments) > 0 {
		if includeArguments {
			attrs = append(attrs, slog.Any("arguments", ti.Arguments))
		} else {
			attrs = append(attrs, slog.String("argument_names", strings.Join(ti.ArgumentNames(), ",")))
		}
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for tool invocations.
type AuditLogger struct {
	logger           *slog.Logger
	includeArguments bool
	enabled          bool
	level            slog.Level
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// Argument values are not logged by default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
		level:   slog.LevelInfo,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
// An unparseable LogLevel falls back to INFO.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	al := NewAuditLogger(logger)
	al.includeArguments = config.IncludeArguments
	al.enabled = config.Enabled

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(config.LogLevel))); err == nil {
		al.level = level
	}
	return al
}

// SetIncludeArguments sets whether argument values are written to audit records.
func (al *AuditLogger) SetIncludeArguments(include bool) {
	al.includeArguments = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// Enabled reports whether audit records are written.
func (al *AuditLogger) Enabled() bool {
	return al != nil && al.enabled
}

// LogToolInvocation writes one audit record. Successful calls are logged at
// the configured level, failures one step above it.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if !al.Enabled() || ti == nil {
		return
	}

	level := al.level
	msg := "tool_executed"
	if !ti.Success {
		level += 4
		msg = "tool_failed"
	}

	al.logger.LogAttrs(ctx, level, msg, ti.LogAttrs(al.includeArguments)...)
}
