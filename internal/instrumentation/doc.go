// Package instrumentation provides OpenTelemetry instrumentation for the
// fantastical-mcp server.
//
// # Metrics
//
// HTTP (streamable-http transport only):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Automation:
//   - automation_executions_total: Counter of osascript/open invocations by mode and status
//   - automation_execution_duration_seconds: Histogram of invocation durations by mode
//   - automation_permission_denied_total: Counter of Automation permission refusals by tool
//   - fallback_navigations_total: Counter of fallback "show today" navigations by tool and result
//   - parse_malformed_lines_total: Counter of event lines with fewer than five fields
//
// MCP tools:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for each tool call (tool.<name>) and for each host
// automation invocation beneath it (automation.<mode>).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: fantastical-mcp)
//
// The stdout exporters write to stderr so they never interleave with MCP
// frames on the stdio transport.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolInvocation(ctx, "get_today", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
