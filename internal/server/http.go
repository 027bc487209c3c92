package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address for the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the MCP endpoint is mounted.
	MCPEndpointPath = "/mcp"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr             string
	DisableStreaming bool
	Logger           *slog.Logger
}

// HTTPServer serves the MCP server over streamable HTTP with health
// endpoints next to it. There is no authentication; bind it to a
// trusted interface.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	health        *HealthChecker
	config        HTTPServerConfig
	httpServer    *http.Server
	addr          string
}

// NewHTTPServer creates an HTTPServer for mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, fmt.Errorf("mcp server is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &HTTPServer{
		mcpServer:     mcpSrv,
		serverContext: sc,
		health:        NewHealthChecker(sc),
		config:        config,
		addr:          config.Addr,
	}
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// HealthChecker returns the health checker backing /readyz.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Handler returns the HTTP handler with the MCP and health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...))
	s.health.RegisterHealthEndpoints(mux)

	var metrics *instrumentation.Metrics
	if s.serverContext != nil {
		metrics = s.serverContext.Metrics()
	}
	return instrumentHTTP(mux, metrics)
}

// Start binds the listener and serves until Shutdown. It returns nil after a
// graceful shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.addr = ln.Addr().String()

	s.config.Logger.Info("starting streamable HTTP server",
		"addr", s.addr,
		"endpoint", MCPEndpointPath,
		"streaming", !s.config.DisableStreaming,
	)

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrumentHTTP records http_requests_total and the request duration.
// Paths outside the known endpoints are recorded as "other".
func instrumentHTTP(next http.Handler, metrics *instrumentation.Metrics) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, metricPath(r.URL.Path), rec.status, time.Since(start))
	})
}

func metricPath(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}
