// Package server holds the MCP server context and the HTTP side of the
// fantastical-mcp server.
//
// ServerContext carries the calendar client plus the optional metrics and
// audit logger that tool handlers record into.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport at
// /mcp, next to /healthz, /readyz and /healthz/detailed. It has no
// authentication and is meant for a trusted local interface.
//
// MetricsServer serves Prometheus metrics on a separate port.
package server
