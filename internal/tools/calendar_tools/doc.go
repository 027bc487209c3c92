// Package calendar_tools exposes macOS Calendar and Fantastical as MCP tools.
//
// The catalog holds six tools:
//   - create_event: send a natural-language sentence to Fantastical
//   - get_today, get_upcoming: list events read from Calendar
//   - show_date, search: open Fantastical at a date or a search
//   - get_calendars: list calendar names
//
// The Dispatcher maps each call to the calendar client and renders the
// result as indented JSON. When macOS denies Automation access it returns a
// remediation message instead of the raw AppleScript error; the event
// queries also open Fantastical at today's date as a fallback.
//
// Fantastical requests are fire-and-forget: create_event, show_date and
// search report success once the URL was handed to the system.
package calendar_tools
