package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fantastical-mcp/internal/calendar"
	"github.com/teemow/fantastical-mcp/internal/server"
)

type fakeSource struct {
	settings  calendar.Settings
	calendars []calendar.Calendar
	err       error
}

func (f *fakeSource) Settings() calendar.Settings { return f.settings }

func (f *fakeSource) Calendars(context.Context) ([]calendar.Calendar, error) {
	return f.calendars, f.err
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decode(t *testing.T, contents []mcp.ResourceContents) map[string]any {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok, "expected text contents, got %T", contents[0])
	assert.Equal(t, mimeJSON, text.MIMEType)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	return data
}

func TestHandleSettings(t *testing.T) {
	src := &fakeSource{settings: calendar.DefaultSettings()}

	contents, err := handleSettings(readRequest(SettingsURI), src)
	require.NoError(t, err)

	data := decode(t, contents)
	assert.Equal(t, "Calendar", data["application"])
	assert.Equal(t, "Fantastical", data["companion"])
	assert.Equal(t, "x-fantastical3", data["url_scheme"])
	assert.Equal(t, calendar.StrategyURL, data["create_strategy"])
	assert.Equal(t, SettingsURI, contents[0].(*mcp.TextResourceContents).URI)
}

func TestHandleCalendars(t *testing.T) {
	src := &fakeSource{calendars: []calendar.Calendar{{Name: "Work"}, {Name: "Home"}}}

	contents, err := handleCalendars(context.Background(), readRequest(CalendarsURI), src)
	require.NoError(t, err)

	data := decode(t, contents)
	assert.Equal(t, float64(2), data["count"])
	assert.Equal(t, []any{
		map[string]any{"name": "Work"},
		map[string]any{"name": "Home"},
	}, data["calendars"])
}

func TestHandleCalendars_Error(t *testing.T) {
	src := &fakeSource{err: errors.New("failed to list calendars: AppleScript error: boom")}

	_, err := handleCalendars(context.Background(), readRequest(CalendarsURI), src)
	assert.EqualError(t, err, "failed to list calendars: AppleScript error: boom")
}

func TestRegisterCalendarResources_RequiresClient(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), nil)
	require.NoError(t, err)
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	assert.Error(t, RegisterCalendarResources(s, sc))
}

func TestRegisterCalendarResources(t *testing.T) {
	client := calendar.NewClient(nil, calendar.DefaultSettings())
	sc, err := server.NewServerContext(context.Background(), client)
	require.NoError(t, err)
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	assert.NoError(t, RegisterCalendarResources(s, sc))
}
