package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod = "method"
	attrPath   = "path"
	attrStatus = "status"
	attrMode   = "mode"
	attrResult = "result"
	attrTool   = "tool"
)

// Metrics provides methods for recording observability metrics.
//
// The zero value is a valid no-op recorder, and so is a nil *Metrics.
type Metrics struct {
	// HTTP metrics (streamable-http transport only)
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Automation metrics
	automationExecutionsTotal   metric.Int64Counter
	automationExecutionDuration metric.Float64Histogram
	permissionDeniedTotal       metric.Int64Counter
	fallbackNavigationsTotal    metric.Int64Counter
	malformedLinesTotal         metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.automationExecutionsTotal, err = meter.Int64Counter(
		"automation_executions_total",
		metric.WithDescription("Total number of AppleScript runs and URL opens"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation_executions_total counter: %w", err)
	}

	// Calendar queries over many calendars can take tens of seconds.
	m.automationExecutionDuration, err = meter.Float64Histogram(
		"automation_execution_duration_seconds",
		metric.WithDescription("Duration of AppleScript runs and URL opens in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation_execution_duration_seconds histogram: %w", err)
	}

	m.permissionDeniedTotal, err = meter.Int64Counter(
		"automation_permission_denied_total",
		metric.WithDescription("Total number of tool calls refused by macOS automation permissions"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation_permission_denied_total counter: %w", err)
	}

	m.fallbackNavigationsTotal, err = meter.Int64Counter(
		"fallback_navigations_total",
		metric.WithDescription("Total number of fallback navigations to the companion app"),
		metric.WithUnit("{navigation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback_navigations_total counter: %w", err)
	}

	m.malformedLinesTotal, err = meter.Int64Counter(
		"parse_malformed_lines_total",
		metric.WithDescription("Total number of script output lines with fewer fields than expected"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse_malformed_lines_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAutomation records one external command execution.
//
// Parameters:
//   - mode: "statement", "program" or "url"
//   - status: "success" or "error"
//   - duration: time spent waiting for the subprocess
func (m *Metrics) RecordAutomation(ctx context.Context, mode, status string, duration time.Duration) {
	if m == nil || m.automationExecutionsTotal == nil || m.automationExecutionDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMode, mode),
		attribute.String(attrStatus, status),
	}

	m.automationExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.automationExecutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPermissionDenied records a tool call that hit the automation permission wall.
func (m *Metrics) RecordPermissionDenied(ctx context.Context, toolName string) {
	if m == nil || m.permissionDeniedTotal == nil {
		return
	}

	m.permissionDeniedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTool, NormalizeToolName(toolName)),
	))
}

// RecordFallbackNavigation records a fallback navigation attempt.
// Result should be one of: "opened", "failed"
func (m *Metrics) RecordFallbackNavigation(ctx context.Context, toolName, result string) {
	if m == nil || m.fallbackNavigationsTotal == nil {
		return
	}

	m.fallbackNavigationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTool, NormalizeToolName(toolName)),
		attribute.String(attrResult, result),
	))
}

// RecordMalformedLines adds n to the malformed output line counter.
func (m *Metrics) RecordMalformedLines(ctx context.Context, n int) {
	if m == nil || m.malformedLinesTotal == nil || n <= 0 {
		return
	}

	m.malformedLinesTotal.Add(ctx, int64(n))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
// Tool names outside the catalog are recorded as "unknown".
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, NormalizeToolName(toolName)),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
