package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the fantastical-mcp application
var rootCmd = &cobra.Command{
	Use:   "fantastical-mcp",
	Short: "MCP server for macOS Calendar and Fantastical",
	Long: `fantastical-mcp is a Model Context Protocol (MCP) server that lets AI
assistants read events from macOS Calendar and create, show and search
events in Fantastical.

It only runs on macOS. Calendar is queried through AppleScript (osascript);
Fantastical is driven through its x-fantastical3:// URL scheme.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fantastical-mcp version %s\n" .Version}}`)

	// MCP clients launch the binary without arguments, so serve is the default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
