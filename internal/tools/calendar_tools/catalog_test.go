package calendar_tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
)

func TestCatalog_Order(t *testing.T) {
	tools := Catalog(DefaultUpcomingDays)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.Equal(t, []string{"create_event", "get_today", "get_upcoming", "show_date", "get_calendars", "search"}, names)
}

func TestCatalog_Schemas(t *testing.T) {
	byName := map[string]map[string]any{}
	required := map[string][]string{}
	for _, tool := range Catalog(DefaultUpcomingDays) {
		byName[tool.Name] = tool.InputSchema.Properties
		required[tool.Name] = tool.InputSchema.Required
	}

	assert.Equal(t, []string{"sentence"}, required["create_event"])
	assert.Len(t, byName["create_event"], 4)
	addImmediately, ok := byName["create_event"]["addImmediately"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boolean", addImmediately["type"])
	assert.Equal(t, true, addImmediately["default"])

	days, ok := byName["get_upcoming"]["days"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "number", days["type"])
	assert.Equal(t, float64(7), days["default"])
	assert.Empty(t, required["get_upcoming"])

	assert.Equal(t, []string{"date"}, required["show_date"])
	assert.Equal(t, []string{"query"}, required["search"])
	assert.Empty(t, byName["get_today"])
	assert.Empty(t, byName["get_calendars"])
}

func TestCatalog_DefaultDays(t *testing.T) {
	for _, tt := range []struct {
		in   int
		want float64
	}{
		{14, 14},
		{0, 7},
	} {
		for _, tool := range Catalog(tt.in) {
			if tool.Name != string(ToolGetUpcoming) {
				continue
			}
			days := tool.InputSchema.Properties["days"].(map[string]any)
			assert.Equal(t, tt.want, days["default"])
		}
	}
}

func TestCatalog_RegistersMetricLabels(t *testing.T) {
	Catalog(DefaultUpcomingDays)

	for _, name := range AllTools {
		assert.Equal(t, string(name), instrumentation.NormalizeToolName(string(name)))
		assert.True(t, Known(string(name)))
	}
	assert.False(t, Known("drop_tables"))
}
