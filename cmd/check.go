package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/fantastical-mcp/internal/calendar"
	"github.com/teemow/fantastical-mcp/internal/osascript"
)

// Check outcomes.
const (
	checkOK   = "OK"
	checkWarn = "WARN"
	checkFail = "FAIL"
	checkSkip = "SKIP"
)

type checkResult struct {
	Name   string
	Status string
	Detail string
}

// installChecker is the part of the calendar client the check command uses.
type installChecker interface {
	Settings() calendar.Settings
	CheckCalendarAccess(ctx context.Context) (int, error)
	CompanionRunning(ctx context.Context) (bool, error)
}

func newCheckCmd() *cobra.Command {
	var (
		configPath string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the server can reach Calendar and Fantastical",
		Long: `Check the installation: the platform, Automation access to Calendar
and whether Fantastical is running.

The Calendar check may trigger the macOS permission prompt the first time.
Exits with status 1 if any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := serveFlags{configPath: configPath}
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var checker installChecker
			if goos == requiredOS {
				logger := slog.New(slog.DiscardHandler)
				app, err := newApplication(ctx, cfg, logger, nil, nil)
				if err != nil {
					return err
				}
				defer app.serverContext.Shutdown()
				checker = app.client
			}

			results := runChecks(ctx, goos, checker)
			printChecks(cmd.OutOrStdout(), results)
			if failed(results) {
				return fmt.Errorf("installation check failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file (env: FANTASTICAL_MCP_CONFIG)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time limit for all checks")

	return cmd
}

// runChecks runs the installation checks. checker may be nil when the
// platform check fails.
func runChecks(ctx context.Context, platform string, checker installChecker) []checkResult {
	if platform != requiredOS {
		return []checkResult{
			{Name: "platform", Status: checkFail, Detail: fmt.Sprintf("%s is not supported, macOS is required", platform)},
			{Name: "calendar access", Status: checkSkip},
			{Name: "companion", Status: checkSkip},
		}
	}

	results := []checkResult{{Name: "platform", Status: checkOK, Detail: "macOS"}}
	settings := checker.Settings()

	n, err := checker.CheckCalendarAccess(ctx)
	switch {
	case osascript.IsPermissionDenied(err):
		results = append(results, checkResult{
			Name:   "calendar access",
			Status: checkFail,
			Detail: "Automation access denied; allow it in System Settings > Privacy & Security > Automation",
		})
	case err != nil:
		results = append(results, checkResult{Name: "calendar access", Status: checkFail, Detail: err.Error()})
	default:
		results = append(results, checkResult{
			Name:   "calendar access",
			Status: checkOK,
			Detail: fmt.Sprintf("%s reports %d calendars", settings.Application, n),
		})
	}

	running, err := checker.CompanionRunning(ctx)
	switch {
	case err != nil:
		results = append(results, checkResult{Name: "companion", Status: checkWarn, Detail: err.Error()})
	case !running:
		results = append(results, checkResult{
			Name:   "companion",
			Status: checkWarn,
			Detail: fmt.Sprintf("%s is not running; it is launched on demand by %s:// URLs", settings.Companion, settings.URLScheme),
		})
	default:
		results = append(results, checkResult{
			Name:   "companion",
			Status: checkOK,
			Detail: fmt.Sprintf("%s is running", settings.Companion),
		})
	}

	return results
}

func printChecks(w io.Writer, results []checkResult) {
	for _, r := range results {
		if r.Detail == "" {
			fmt.Fprintf(w, "[%-4s] %s\n", r.Status, r.Name)
			continue
		}
		fmt.Fprintf(w, "[%-4s] %s: %s\n", r.Status, r.Name, r.Detail)
	}
}

func failed(results []checkResult) bool {
	for _, r := range results {
		if r.Status == checkFail {
			return true
		}
	}
	return false
}
