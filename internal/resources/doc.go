// Package resources provides read-only MCP resources describing the calendar
// setup: the effective settings (calendar://settings) and the calendar names
// (calendar://calendars). Reading calendar://calendars runs AppleScript and
// fails like get_calendars when Automation access is missing.
package resources
