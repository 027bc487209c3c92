// Package config loads the fantastical-mcp configuration from an optional
// YAML file and FANTASTICAL_MCP_* environment variables.
//
// Example config.yaml:
//
//	calendar:
//	  application: Calendar
//	  companion: Fantastical
//	  url_scheme: x-fantastical3
//	  create_strategy: url
//	  default_upcoming_days: 7
//	server:
//	  transport: stdio
//	logging:
//	  level: info
//	  format: text
package config
