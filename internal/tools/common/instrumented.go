package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
	"github.com/teemow/fantastical-mcp/internal/server"
)

// ToolHandler is the mcp-go tool handler signature, as an alias of the
// function type accepted by MCPServer.AddTool.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and audit logging.
// The request ID of the audit record is attached to the span.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("get_today", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithArguments(request.GetArguments())

		ctx, span := instrumentation.StartToolSpan(ctx, instrumentation.NormalizeToolName(toolName),
			instrumentation.NewSpanAttributeBuilder().WithRequestID(invocation.RequestID).Build()...)
		defer span.End()
		invocation.WithSpanContext(ctx)

		ctx = WithErrorKind(ctx)
		result, err := handler(ctx, request)
		duration := time.Since(invocation.StartTime)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			resultErr := errors.New(ResultText(result))
			invocation.CompleteWithError(resultErr)
			instrumentation.SetSpanError(span, resultErr)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}
		invocation.WithErrorKind(ErrorKind(ctx))

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(ctx, invocation)
		}

		return result, err
	}
}

// ResultText returns the text of the first text content in result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}
