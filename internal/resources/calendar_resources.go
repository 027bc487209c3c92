package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fantastical-mcp/internal/calendar"
	"github.com/teemow/fantastical-mcp/internal/server"
)

// Resource URIs.
const (
	SettingsURI  = "calendar://settings"
	CalendarsURI = "calendar://calendars"
)

const mimeJSON = "application/json"

// calendarSource is the part of the calendar client the resources read.
type calendarSource interface {
	Settings() calendar.Settings
	Calendars(ctx context.Context) ([]calendar.Calendar, error)
}

// RegisterCalendarResources registers the read-only calendar resources.
// The server context must carry a calendar client.
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client := sc.CalendarClient()
	if client == nil {
		return fmt.Errorf("no calendar client configured")
	}

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Calendar Settings",
		mcp.WithResourceDescription("The calendar application, companion application and event creation strategy this server drives"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(request, client)
	})

	calendarsResource := mcp.NewResource(
		CalendarsURI,
		"Calendars",
		mcp.WithResourceDescription("Names of all calendars in the calendar application. Requires Automation access."),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendars(ctx, request, client)
	})

	return nil
}

func handleSettings(request mcp.ReadResourceRequest, src calendarSource) ([]mcp.ResourceContents, error) {
	settings := src.Settings()
	data := map[string]any{
		"application":     settings.Application,
		"companion":       settings.Companion,
		"url_scheme":      settings.URLScheme,
		"create_strategy": settings.CreateStrategy,
	}
	return jsonContents(request.Params.URI, data)
}

func handleCalendars(ctx context.Context, request mcp.ReadResourceRequest, src calendarSource) ([]mcp.ResourceContents, error) {
	calendars, err := src.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"count":     len(calendars),
		"calendars": calendars,
	}
	return jsonContents(request.Params.URI, data)
}

func jsonContents(uri string, data any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
