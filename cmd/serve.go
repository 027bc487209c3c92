package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fantastical-mcp/internal/calendar"
	"github.com/teemow/fantastical-mcp/internal/config"
	"github.com/teemow/fantastical-mcp/internal/instrumentation"
	"github.com/teemow/fantastical-mcp/internal/logging"
	"github.com/teemow/fantastical-mcp/internal/osascript"
	"github.com/teemow/fantastical-mcp/internal/resources"
	"github.com/teemow/fantastical-mcp/internal/server"
	"github.com/teemow/fantastical-mcp/internal/tools/calendar_tools"
)

// requiredOS is the only platform the calendar automation works on.
const requiredOS = "darwin"

// goos is replaced in tests.
var goos = runtime.GOOS

// serveFlags holds the serve command line. Flags that were not set on the
// command line leave the loaded configuration untouched.
type serveFlags struct {
	configPath       string
	debug            bool
	transport        string
	httpAddr         string
	disableStreaming bool
	metricsEnabled   bool
	metricsAddr      string
	logFormat        string
	createStrategy   string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server with the calendar tools:
create_event, get_today, get_upcoming, show_date, get_calendars and search.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport at /mcp (no authentication)

Logs always go to stderr. On the stdio transport stdout carries MCP frames.

Configuration:
  --config PATH or FANTASTICAL_MCP_CONFIG points at an optional YAML file.
  FANTASTICAL_MCP_* environment variables override the file, and flags
  override both.

macOS will ask once for permission to control Calendar. If access was
denied, grant it in System Settings > Privacy & Security > Automation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePlatform(); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}

			return runServe(cfg, flags.debug)
		},
	}

	bindServeFlags(cmd, &flags)

	return cmd
}

// bindServeFlags registers the serve flags on cmd.
func bindServeFlags(cmd *cobra.Command, flags *serveFlags) {
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to a YAML configuration file (env: FANTASTICAL_MCP_CONFIG)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&flags.transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&flags.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&flags.disableStreaming, "disable-streaming", false, "Disable streaming for streamable-http transport")
	cmd.Flags().BoolVar(&flags.metricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")
	cmd.Flags().StringVar(&flags.createStrategy, "create-strategy", calendar.StrategyURL, "How create_event reaches Fantastical: url or applescript")
}

// requirePlatform refuses to run anywhere but macOS.
func requirePlatform() error {
	if goos != requiredOS {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("fantastical-mcp only runs on macOS",
			"os", goos,
		)
		return fmt.Errorf("unsupported platform %q: macOS is required", goos)
	}
	return nil
}

// loadConfig loads the configuration file and applies the flags that were
// explicitly set.
func loadConfig(cmd *cobra.Command, flags *serveFlags) (*config.Config, error) {
	path := flags.configPath
	if !cmd.Flags().Changed("config") {
		path = os.Getenv("FANTASTICAL_MCP_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Server.Transport = flags.transport
	}
	if changed("http-addr") {
		cfg.Server.HTTPAddr = flags.httpAddr
	}
	if changed("disable-streaming") {
		cfg.Server.DisableStreaming = flags.disableStreaming
	}
	if changed("metrics-enabled") {
		cfg.Metrics.Enabled = flags.metricsEnabled
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	if changed("create-strategy") {
		cfg.Calendar.CreateStrategy = flags.createStrategy
	}
	if changed("debug") && flags.debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger described by cfg.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(os.Stderr, level, cfg.Logging.Format), nil
}

// application bundles the components shared by the commands.
type application struct {
	client        *calendar.Client
	serverContext *server.ServerContext
	dispatcher    *calendar_tools.Dispatcher
	mcpServer     *mcpserver.MCPServer
}

// newApplication wires executor, calendar client, dispatcher and MCP server.
// metrics may be nil.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics, runner osascript.Runner) (*application, error) {
	adapter := logging.NewSlogAdapter(logger)

	execOpts := []osascript.Option{
		osascript.WithLogger(adapter.With("component", "osascript")),
		osascript.WithMetrics(metrics),
	}
	if runner != nil {
		execOpts = append(execOpts, osascript.WithRunner(runner))
	}
	executor := osascript.New(execOpts...)

	client := calendar.NewClient(executor,
		calendar.Settings{
			Application:    cfg.Calendar.Application,
			Companion:      cfg.Calendar.Companion,
			URLScheme:      cfg.Calendar.URLScheme,
			CreateStrategy: cfg.Calendar.CreateStrategy,
		},
		calendar.WithLogger(adapter.With("component", "calendar")),
		calendar.WithLineRecorder(metrics),
	)

	serverContext, err := server.NewServerContext(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}

	dispatcher := calendar_tools.NewDispatcher(client,
		calendar_tools.WithDefaultDays(cfg.Calendar.DefaultUpcomingDays),
		calendar_tools.WithLogger(adapter.With("component", "tools")),
		calendar_tools.WithMetrics(metrics),
	)

	mcpSrv := mcpserver.NewMCPServer("fantastical-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext, dispatcher); err != nil {
		_ = serverContext.Shutdown()
		return nil, fmt.Errorf("failed to register calendar tools: %w", err)
	}
	if err := resources.RegisterCalendarResources(mcpSrv, serverContext); err != nil {
		_ = serverContext.Shutdown()
		return nil, fmt.Errorf("failed to register calendar resources: %w", err)
	}

	return &application{
		client:        client,
		serverContext: serverContext,
		dispatcher:    dispatcher,
		mcpServer:     mcpSrv,
	}, nil
}

func runServe(cfg *config.Config, debugMode bool) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation configuration: %w", err)
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	transport := cfg.Server.Transport
	var metricsServer *server.MetricsServer
	if transport != config.TransportStdio && cfg.Metrics.Enabled && provider.ServesPrometheus() {
		metricsServer, err = startMetricsServer(cfg.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error shutting down metrics server", logging.Err(err))
			}
		}()
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	app, err := newApplication(shutdownCtx, cfg, logger, metrics, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		app.serverContext.SetMetrics(metrics)
		if instrConfig.AuditLogging.Enabled {
			app.serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(
				logger.With("component", "audit"), instrConfig.AuditLogging))
		}
	}

	settings := app.client.Settings()
	logger.Info("fantastical-mcp started",
		"version", version,
		"transport", transport,
		"application", settings.Application,
		"companion", settings.Companion,
		"create_strategy", settings.CreateStrategy,
		"debug", debugMode,
	)

	switch transport {
	case config.TransportStdio:
		return runStdioServer(shutdownCtx, app.mcpServer, logger)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, app, cfg, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("stdio server stopped with error: %w", err)
		}
		logger.Info("stdio server stopped")
		return nil
	}
}

func runStreamableHTTPServer(ctx context.Context, app *application, cfg *config.Config, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(app.mcpServer, app.serverContext, server.HTTPServerConfig{
		Addr:             cfg.Server.HTTPAddr,
		DisableStreaming: cfg.Server.DisableStreaming,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
