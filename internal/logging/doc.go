// Package logging provides structured logging utilities for the fantastical-mcp server.
//
// Everything logs through log/slog. The stdio transport reserves standard output
// for protocol frames, so loggers built here are always pointed at standard error.
//
// # Usage Patterns
//
// Build the process logger once:
//
//	logger := logging.NewLogger(os.Stderr, slog.LevelInfo, logging.FormatText)
//	slog.SetDefault(logger)
//
// Attach consistent attributes:
//
//	logger.Info("tool finished",
//	    logging.Tool("get_today"),
//	    logging.Status(logging.StatusSuccess))
//
// # Sensitive Content
//
// Event sentences, notes, search queries and generated scripts are user content.
// Log them through Redact or Text, which keep only the length.
package logging
