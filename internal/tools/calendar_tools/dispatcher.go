package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/fantastical-mcp/internal/calendar"
	"github.com/teemow/fantastical-mcp/internal/instrumentation"
	"github.com/teemow/fantastical-mcp/internal/logging"
	"github.com/teemow/fantastical-mcp/internal/osascript"
	"github.com/teemow/fantastical-mcp/internal/tools/common"
)

// PermissionMessage is returned instead of an error when macOS refuses
// Automation access to Calendar.
const PermissionMessage = `Calendar access was denied.

To allow access:
1. Open System Settings > Privacy & Security > Automation
2. Find the application running this server (e.g. Terminal or Claude)
3. Enable the "Calendar" checkbox under it
4. Retry the request`

const (
	fallbackOpenedNote = "Fantastical has been opened at today's date instead."
	fallbackFailedNote = "Opening Fantastical at today's date also failed."
)

// CalendarService is the calendar backend used by the dispatcher.
// *calendar.Client satisfies it.
type CalendarService interface {
	Today(ctx context.Context) (calendar.EventRange, error)
	Events(ctx context.Context, days int) (calendar.EventRange, error)
	Calendars(ctx context.Context) ([]calendar.Calendar, error)
	CreateEvent(ctx context.Context, ev calendar.NewEvent) error
	ShowDate(ctx context.Context, date string) error
	ShowToday(ctx context.Context) error
	Search(ctx context.Context, query string) error
}

// Recorder records permission-denied responses and fallback navigations.
// *instrumentation.Metrics satisfies it.
type Recorder interface {
	RecordPermissionDenied(ctx context.Context, toolName string)
	RecordFallbackNavigation(ctx context.Context, toolName, result string)
}

// Dispatcher maps tool calls to calendar operations. It keeps no state
// between calls.
type Dispatcher struct {
	service     CalendarService
	defaultDays int
	logger      logging.Logger
	metrics     Recorder
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDefaultDays sets the get_upcoming window used when days is omitted.
func WithDefaultDays(days int) DispatcherOption {
	return func(d *Dispatcher) {
		if days > 0 {
			d.defaultDays = days
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithMetrics sets the permission and fallback recorder.
func WithMetrics(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

// NewDispatcher creates a Dispatcher over service.
func NewDispatcher(service CalendarService, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		service:     service,
		defaultDays: DefaultUpcomingDays,
		logger:      logging.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultDays returns the get_upcoming default window.
func (d *Dispatcher) DefaultDays() int {
	return d.defaultDays
}

// Call runs the tool name with args. It never returns nil and never
// propagates a Go error: failures become error results with an "Error: "
// prefix, or the permission message.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	if args == nil {
		args = map[string]any{}
	}

	var (
		payload any
		err     error
	)
	switch tool := ToolName(name); tool {
	case ToolCreateEvent:
		payload, err = d.createEvent(ctx, args)
	case ToolGetToday:
		payload, err = d.getToday(ctx)
	case ToolGetUpcoming:
		payload, err = d.getUpcoming(ctx, args)
	case ToolShowDate:
		payload, err = d.showDate(ctx, args)
	case ToolGetCalendars:
		payload, err = d.getCalendars(ctx)
	case ToolSearch:
		payload, err = d.search(ctx, args)
	default:
		common.RecordErrorKind(ctx, common.ErrorKindUnknownTool)
		err = fmt.Errorf("unknown tool: %s", name)
	}

	if err != nil {
		return d.failure(ctx, ToolName(name), err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("Error: " + err.Error())
	}
	return mcp.NewToolResultText(string(data))
}

// failure converts err into an error result. Permission denials on the
// event queries trigger the fallback navigation.
func (d *Dispatcher) failure(ctx context.Context, tool ToolName, err error) *mcp.CallToolResult {
	var argErr *argumentError
	switch {
	case errors.As(err, &argErr):
		common.RecordErrorKind(ctx, common.ErrorKindInvalidArgument)
	case osascript.IsPermissionDenied(err):
		return d.permissionDenied(ctx, tool)
	default:
		if kind := osascript.KindOf(err); kind != "" {
			common.RecordErrorKind(ctx, string(kind))
		}
	}

	d.logger.Warn("tool call failed",
		logging.Tool(string(tool)),
		logging.Err(err),
	)
	return mcp.NewToolResultError("Error: " + err.Error())
}

func (d *Dispatcher) permissionDenied(ctx context.Context, tool ToolName) *mcp.CallToolResult {
	common.RecordErrorKind(ctx, string(osascript.KindPermissionDenied))
	if d.metrics != nil {
		d.metrics.RecordPermissionDenied(ctx, string(tool))
	}
	span := trace.SpanFromContext(ctx)

	if tool != ToolGetToday && tool != ToolGetUpcoming {
		d.logger.Warn("calendar automation permission denied", logging.Tool(string(tool)))
		instrumentation.AddSpanEvent(span, "permission_denied")
		return mcp.NewToolResultError(PermissionMessage)
	}

	result := instrumentation.FallbackOpened
	note := fallbackOpenedNote
	if err := d.service.ShowToday(ctx); err != nil {
		result = instrumentation.FallbackFailed
		note = fallbackFailedNote
		d.logger.Error("fallback navigation failed",
			logging.Tool(string(tool)),
			logging.Err(err),
		)
	}

	d.logger.Warn("calendar automation permission denied",
		logging.Tool(string(tool)),
		"fallback", result,
	)
	if d.metrics != nil {
		d.metrics.RecordFallbackNavigation(ctx, string(tool), result)
	}
	instrumentation.AddSpanEvent(span, "permission_denied",
		instrumentation.NewSpanAttributeBuilder().WithFallback(result).Build()...)

	return mcp.NewToolResultError(PermissionMessage + "\n\n" + note)
}

type createEventResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Sentence       string `json:"sentence"`
	Calendar       string `json:"calendar,omitempty"`
	Notes          string `json:"notes,omitempty"`
	AddImmediately bool   `json:"addImmediately"`
}

func (d *Dispatcher) createEvent(ctx context.Context, args map[string]any) (any, error) {
	sentence, err := requiredString(args, "sentence")
	if err != nil {
		return nil, err
	}
	calendarName, err := optionalString(args, "calendar")
	if err != nil {
		return nil, err
	}
	notes, err := optionalString(args, "notes")
	if err != nil {
		return nil, err
	}
	addImmediately, err := optionalBool(args, "addImmediately", true)
	if err != nil {
		return nil, err
	}

	ev := calendar.NewEvent{
		Sentence:       sentence,
		Calendar:       calendarName,
		Notes:          notes,
		AddImmediately: addImmediately,
	}
	if err := d.service.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}

	return createEventResponse{
		Success:        true,
		Message:        fmt.Sprintf("Event sent to Fantastical: %s", sentence),
		Sentence:       sentence,
		Calendar:       calendarName,
		Notes:          notes,
		AddImmediately: addImmediately,
	}, nil
}

type eventsResponse struct {
	Date   string           `json:"date,omitempty"`
	Range  *rangeResponse   `json:"range,omitempty"`
	Count  int              `json:"count"`
	Events []calendar.Event `json:"events"`
}

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

func (d *Dispatcher) getToday(ctx context.Context) (any, error) {
	r, err := d.service.Today(ctx)
	if err != nil {
		return nil, err
	}
	recordEventCount(ctx, len(r.Events))

	return eventsResponse{
		Date:   r.Start.Format(time.DateOnly),
		Count:  len(r.Events),
		Events: nonNilEvents(r.Events),
	}, nil
}

func (d *Dispatcher) getUpcoming(ctx context.Context, args map[string]any) (any, error) {
	days, err := d.daysArgument(args)
	if err != nil {
		return nil, err
	}

	r, err := d.service.Events(ctx, days)
	if err != nil {
		return nil, err
	}
	recordEventCount(ctx, len(r.Events))

	return eventsResponse{
		Range: &rangeResponse{
			Start: r.Start.Format(time.RFC3339),
			End:   r.End.Format(time.RFC3339),
			Days:  r.Days,
		},
		Count:  len(r.Events),
		Events: nonNilEvents(r.Events),
	}, nil
}

type navigationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (d *Dispatcher) showDate(ctx context.Context, args map[string]any) (any, error) {
	date, err := requiredString(args, "date")
	if err != nil {
		return nil, err
	}
	if err := d.service.ShowDate(ctx, date); err != nil {
		return nil, err
	}
	return navigationResponse{
		Success: true,
		Message: fmt.Sprintf("Opened Fantastical at %s", date),
	}, nil
}

type calendarsResponse struct {
	Count     int                 `json:"count"`
	Calendars []calendar.Calendar `json:"calendars"`
}

func (d *Dispatcher) getCalendars(ctx context.Context) (any, error) {
	calendars, err := d.service.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	if calendars == nil {
		calendars = []calendar.Calendar{}
	}
	return calendarsResponse{
		Count:     len(calendars),
		Calendars: calendars,
	}, nil
}

func (d *Dispatcher) search(ctx context.Context, args map[string]any) (any, error) {
	query, err := requiredString(args, "query")
	if err != nil {
		return nil, err
	}
	if err := d.service.Search(ctx, query); err != nil {
		return nil, err
	}
	return navigationResponse{
		Success: true,
		Message: fmt.Sprintf("Searching Fantastical for: %s", query),
	}, nil
}

// daysArgument reads days as a JSON number, an integer or a numeric string.
// Fractions are truncated; the result must be at least 1.
func (d *Dispatcher) daysArgument(args map[string]any) (int, error) {
	raw, ok := args["days"]
	if !ok || raw == nil {
		return d.defaultDays, nil
	}

	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, invalidArgument("days must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalidArgument("days must be a number")
		}
		f = parsed
	default:
		return 0, invalidArgument("days must be a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) < 1 {
		return 0, invalidArgument("days must be a positive number")
	}
	if f > math.MaxInt32 {
		return 0, invalidArgument("days is too large")
	}
	return int(f), nil
}

func recordEventCount(ctx context.Context, n int) {
	trace.SpanFromContext(ctx).SetAttributes(
		instrumentation.NewSpanAttributeBuilder().WithEventCount(n).Build()...)
}

func nonNilEvents(events []calendar.Event) []calendar.Event {
	if events == nil {
		return []calendar.Event{}
	}
	return events
}

// argumentError is a caller mistake in the tool arguments.
type argumentError struct {
	msg string
}

func (e *argumentError) Error() string {
	return e.msg
}

func invalidArgument(format string, a ...any) error {
	return &argumentError{msg: fmt.Sprintf(format, a...)}
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", invalidArgument("%s is required", key)
	}
	return v, nil
}

func optionalString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", invalidArgument("%s must be a string", key)
	}
	return v, nil
}

func optionalBool(args map[string]any, key string, def bool) (bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, invalidArgument("%s must be a boolean", key)
		}
		return b, nil
	default:
		return false, invalidArgument("%s must be a boolean", key)
	}
}
