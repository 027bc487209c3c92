package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fantastical-mcp/internal/server"
	"github.com/teemow/fantastical-mcp/internal/tools/common"
)

// RegisterCalendarTools registers the calendar tool catalog with the MCP server.
// Every tool is routed through d and wrapped with instrumentation.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, d *Dispatcher) error {
	if d == nil {
		return fmt.Errorf("dispatcher is required")
	}

	for _, tool := range Catalog(d.DefaultDays()) {
		name := tool.Name
		s.AddTool(tool, common.InstrumentedToolHandler(name, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return d.Call(ctx, name, request.GetArguments()), nil
			},
		))
	}
	return nil
}
