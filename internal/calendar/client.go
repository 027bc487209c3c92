package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teemow/fantastical-mcp/internal/logging"
	"github.com/teemow/fantastical-mcp/internal/osascript"
)

// ScriptRunner runs one script or URL on the host. *osascript.Executor
// satisfies it.
type ScriptRunner interface {
	Run(ctx context.Context, script string, mode osascript.Mode) (string, error)
}

// LineRecorder receives the number of malformed output lines per query.
// *instrumentation.Metrics satisfies it.
type LineRecorder interface {
	RecordMalformedLines(ctx context.Context, n int)
}

// Client talks to the calendar application through AppleScript and to the
// companion application through its URL scheme.
type Client struct {
	runner   ScriptRunner
	settings Settings
	now      func() time.Time
	logger   logging.Logger
	lines    LineRecorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClock replaces time.Now for range boundaries.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithLineRecorder sets the recorder for malformed output lines.
func WithLineRecorder(r LineRecorder) ClientOption {
	return func(c *Client) {
		c.lines = r
	}
}

// NewClient creates a Client. Empty settings fields take their defaults.
func NewClient(runner ScriptRunner, settings Settings, opts ...ClientOption) *Client {
	c := &Client{
		runner:   runner,
		settings: settings.withDefaults(),
		now:      time.Now,
		logger:   logging.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the effective settings.
func (c *Client) Settings() Settings {
	return c.settings
}

// Today returns the events starting today.
func (c *Client) Today(ctx context.Context) (EventRange, error) {
	return c.Events(ctx, 1)
}

// Events returns the events starting within the next days calendar days,
// counted from local midnight today.
func (c *Client) Events(ctx context.Context, days int) (EventRange, error) {
	if days < 1 {
		return EventRange{}, fmt.Errorf("days must be a positive number")
	}

	now := c.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	result := EventRange{
		Start: start,
		End:   start.AddDate(0, 0, days),
		Days:  days,
	}

	raw, err := c.runner.Run(ctx, EventRangeScript(c.settings.Application, days), osascript.ModeProgram)
	if err != nil {
		return result, fmt.Errorf("failed to list events: %w", err)
	}

	result.Events, result.Malformed = ParseEvents(raw)
	if result.Events == nil {
		result.Events = []Event{}
	}
	if result.Malformed > 0 {
		c.logger.Warn("malformed event lines in calendar output",
			logging.Count(result.Malformed),
			"days", days,
		)
		if c.lines != nil {
			c.lines.RecordMalformedLines(ctx, result.Malformed)
		}
	}

	return result, nil
}

// Calendars returns every calendar known to the calendar application.
func (c *Client) Calendars(ctx context.Context) ([]Calendar, error) {
	raw, err := c.runner.Run(ctx, CalendarsScript(c.settings.Application), osascript.ModeProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := ParseCalendars(raw)
	if calendars == nil {
		calendars = []Calendar{}
	}
	return calendars, nil
}

// CreateEvent hands ev to the companion's natural-language parser using the
// configured strategy. Success only means the request was delivered.
func (c *Client) CreateEvent(ctx context.Context, ev NewEvent) error {
	if strings.TrimSpace(ev.Sentence) == "" {
		return fmt.Errorf("sentence cannot be empty")
	}

	var err error
	switch c.settings.CreateStrategy {
	case StrategyAppleScript:
		_, err = c.runner.Run(ctx, ParseSentenceScript(c.settings.Companion, ev), osascript.ModeStatement)
	default:
		_, err = c.runner.Run(ctx, ParseURL(c.settings.URLScheme, ev), osascript.ModeURL)
	}
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ShowDate opens the companion at date.
func (c *Client) ShowDate(ctx context.Context, date string) error {
	if _, err := c.runner.Run(ctx, ShowDateURL(c.settings.URLScheme, date), osascript.ModeURL); err != nil {
		return fmt.Errorf("failed to show date: %w", err)
	}
	return nil
}

// ShowToday opens the companion at today.
func (c *Client) ShowToday(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, ShowTodayURL(c.settings.URLScheme), osascript.ModeURL); err != nil {
		return fmt.Errorf("failed to show today: %w", err)
	}
	return nil
}

// Search opens the companion's search UI for query.
func (c *Client) Search(ctx context.Context, query string) error {
	if _, err := c.runner.Run(ctx, SearchURL(c.settings.URLScheme, query), osascript.ModeURL); err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	return nil
}

// CompanionRunning reports whether the companion application process is running.
func (c *Client) CompanionRunning(ctx context.Context) (bool, error) {
	out, err := c.runner.Run(ctx, CompanionRunningScript(c.settings.Companion), osascript.ModeStatement)
	if err != nil {
		return false, fmt.Errorf("failed to check %s process: %w", c.settings.Companion, err)
	}
	return strings.EqualFold(strings.TrimSpace(out), "true"), nil
}

// CheckCalendarAccess verifies Automation access to the calendar application
// and returns the number of calendars it reports.
func (c *Client) CheckCalendarAccess(ctx context.Context) (int, error) {
	out, err := c.runner.Run(ctx, CalendarAccessScript(c.settings.Application), osascript.ModeStatement)
	if err != nil {
		return 0, fmt.Errorf("failed to access %s: %w", c.settings.Application, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected calendar count %q: %w", out, err)
	}
	return n, nil
}
