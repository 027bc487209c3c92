package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
	"github.com/teemow/fantastical-mcp/internal/server"
)

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// auditRecords attaches a JSON audit logger to sc and returns a function
// decoding the records written so far.
func auditRecords(t *testing.T, sc *server.ServerContext) func() []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	return func() []map[string]any {
		var records []map[string]any
		dec := json.NewDecoder(&buf)
		for dec.More() {
			var rec map[string]any
			if err := dec.Decode(&rec); err != nil {
				t.Fatalf("failed to decode audit record: %v", err)
			}
			records = append(records, rec)
		}
		return records
	}
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil || result.IsError {
		t.Errorf("expected successful result, got %+v", result)
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})

	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_AuditsErrorResult(t *testing.T) {
	sc := newServerContext(t)
	records := auditRecords(t, sc)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		RecordErrorKind(ctx, "permission_denied")
		return mcp.NewToolResultError("Calendar access was denied."), nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"days": 3.0, "secret": "dentist"}

	result, err := InstrumentedToolHandler("get_upcoming", sc, handler)(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}

	recs := records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	rec := recs[0]
	if rec["msg"] != "tool_failed" {
		t.Errorf("msg = %v, want tool_failed", rec["msg"])
	}
	if rec["error_kind"] != "permission_denied" {
		t.Errorf("error_kind = %v, want permission_denied", rec["error_kind"])
	}
	if rec["error"] != "Calendar access was denied." {
		t.Errorf("error = %v", rec["error"])
	}
	if rec["argument_names"] != "days,secret" {
		t.Errorf("argument_names = %v, want days,secret", rec["argument_names"])
	}
	if _, ok := rec["arguments"]; ok {
		t.Error("argument values must not be logged by default")
	}
	if id, _ := rec["request_id"].(string); id == "" {
		t.Error("expected a request_id")
	}
}

func TestInstrumentedToolHandler_AuditsSuccess(t *testing.T) {
	sc := newServerContext(t)
	records := auditRecords(t, sc)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("{}"), nil
	}
	if _, err := InstrumentedToolHandler("get_today", sc, handler)(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	recs := records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	if recs[0]["msg"] != "tool_executed" || recs[0]["success"] != true {
		t.Errorf("unexpected record: %v", recs[0])
	}
	if _, ok := recs[0]["error_kind"]; ok {
		t.Error("successful call should carry no error_kind")
	}
}

func TestInstrumentedToolHandler_WithMetrics(t *testing.T) {
	sc := newServerContext(t)

	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	sc.SetMetrics(metrics)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		time.Sleep(1 * time.Millisecond)
		return mcp.NewToolResultText("success"), nil
	}

	// With a noop meter only the code path is exercised.
	result, err := InstrumentedToolHandler("search", sc, handler)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestResultText(t *testing.T) {
	if got := ResultText(nil); got != "" {
		t.Errorf("ResultText(nil) = %q", got)
	}
	if got := ResultText(mcp.NewToolResultError("Error: boom")); got != "Error: boom" {
		t.Errorf("ResultText = %q, want %q", got, "Error: boom")
	}
}

func TestInstrumentedToolHandler_RegistersWithServer(t *testing.T) {
	sc := newServerContext(t)

	var handler mcpserver.ToolHandlerFunc = InstrumentedToolHandler("get_today", sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		})

	s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("get_today"), handler)

	registered, ok := s.ListTools()["get_today"]
	if !ok {
		t.Fatal("expected get_today to be registered")
	}
	result, err := registered.Handler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := ResultText(result); got != "ok" {
		t.Errorf("ResultText = %q, want ok", got)
	}
}
