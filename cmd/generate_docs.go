package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fantastical-mcp/internal/config"
	"github.com/teemow/fantastical-mcp/internal/tools/calendar_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Nothing is executed, so the defaults are enough to register the tools
	cfg := config.Default()
	app, err := newApplication(context.Background(), &cfg, slog.New(slog.DiscardHandler), nil, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.serverContext.Shutdown()
	}()

	serverTools := app.mcpServer.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running fantastical-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sortByCatalog(tools)

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", tool.Name, tool.Name))
	}
	sb.WriteString("\n")

	sb.WriteString("## Permissions\n\n")
	sb.WriteString("`get_today`, `get_upcoming` and `get_calendars` read Calendar through AppleScript and need Automation access ")
	sb.WriteString("(System Settings > Privacy & Security > Automation). `create_event`, `show_date` and `search` open Fantastical ")
	sb.WriteString("URLs and report success once the URL was handed to macOS.\n\n")

	sb.WriteString("## Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

// sortByCatalog orders tools as in the catalog; unknown tools go last by name.
func sortByCatalog(tools []mcp.Tool) {
	rank := make(map[string]int, len(calendar_tools.AllTools))
	for i, name := range calendar_tools.AllTools {
		rank[string(name)] = i
	}
	sort.SliceStable(tools, func(i, j int) bool {
		ri, iok := rank[tools[i].Name]
		rj, jok := rank[tools[j].Name]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return tools[i].Name < tools[j].Name
		}
	})
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) == 0 {
		sb.WriteString("No arguments.\n")
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")

	// Sort properties for consistent output
	propNames := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			continue
		}

		requiredStr := "optional"
		if contains(tool.InputSchema.Required, name) {
			requiredStr = "required"
		}

		propType := getPropertyType(propMap)
		sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, propType, requiredStr))

		if desc, ok := propMap["description"].(string); ok {
			sb.WriteString(desc)
		} else {
			sb.WriteString(fmt.Sprintf("%s parameter", propType))
		}
		if def, ok := propMap["default"]; ok {
			sb.WriteString(fmt.Sprintf(" (default: `%v`)", def))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
