package calendar_tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
)

// ToolName identifies one of the calendar tools.
type ToolName string

// Calendar tools, in catalog order.
const (
	ToolCreateEvent  ToolName = "create_event"
	ToolGetToday     ToolName = "get_today"
	ToolGetUpcoming  ToolName = "get_upcoming"
	ToolShowDate     ToolName = "show_date"
	ToolGetCalendars ToolName = "get_calendars"
	ToolSearch       ToolName = "search"
)

// AllTools lists every tool in catalog order.
var AllTools = []ToolName{
	ToolCreateEvent,
	ToolGetToday,
	ToolGetUpcoming,
	ToolShowDate,
	ToolGetCalendars,
	ToolSearch,
}

// DefaultUpcomingDays is the get_upcoming window when days is omitted.
const DefaultUpcomingDays = 7

// Known reports whether name is one of the catalog tools.
func Known(name string) bool {
	for _, t := range AllTools {
		if string(t) == name {
			return true
		}
	}
	return false
}

// Catalog builds the ordered tool descriptors. defaultDays is advertised as
// the get_upcoming default; values below 1 fall back to DefaultUpcomingDays.
// The tool names are registered as metric label values.
func Catalog(defaultDays int) []mcp.Tool {
	if defaultDays < 1 {
		defaultDays = DefaultUpcomingDays
	}

	names := make([]string, 0, len(AllTools))
	for _, t := range AllTools {
		names = append(names, string(t))
	}
	instrumentation.RegisterToolNames(names...)

	return []mcp.Tool{
		mcp.NewTool(string(ToolCreateEvent),
			mcp.WithDescription("Create an event in Fantastical from a natural-language sentence"),
			mcp.WithString("sentence",
				mcp.Required(),
				mcp.Description("Natural-language description of the event (e.g. 'Lunch with Anna tomorrow at noon')"),
			),
			mcp.WithString("calendar",
				mcp.Description("Name of the calendar to add the event to"),
			),
			mcp.WithString("notes",
				mcp.Description("Notes to attach to the event"),
			),
			mcp.WithBoolean("addImmediately",
				mcp.Description("Add the event without showing the Fantastical confirmation UI"),
				mcp.DefaultBool(true),
			),
		),
		mcp.NewTool(string(ToolGetToday),
			mcp.WithDescription("List today's events from all calendars"),
		),
		mcp.NewTool(string(ToolGetUpcoming),
			mcp.WithDescription("List events from all calendars for the coming days, starting today"),
			mcp.WithNumber("days",
				mcp.Description("Number of days to include, counted from the start of today"),
				mcp.DefaultNumber(float64(defaultDays)),
			),
		),
		mcp.NewTool(string(ToolShowDate),
			mcp.WithDescription("Open Fantastical at a specific date"),
			mcp.WithString("date",
				mcp.Required(),
				mcp.Description("Date to show, passed to Fantastical as given (e.g. '2025-03-04' or 'tomorrow')"),
			),
		),
		mcp.NewTool(string(ToolGetCalendars),
			mcp.WithDescription("List the names of all calendars"),
		),
		mcp.NewTool(string(ToolSearch),
			mcp.WithDescription("Open a search in Fantastical. Results are shown in the Fantastical UI, not returned"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search text"),
			),
		),
	}
}
