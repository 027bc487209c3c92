package osascript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/fantastical-mcp/internal/instrumentation"
	"github.com/teemow/fantastical-mcp/internal/logging"
)

// Mode selects how a script is handed to the host.
type Mode string

const (
	// ModeStatement runs a single AppleScript statement.
	ModeStatement Mode = instrumentation.ModeStatement

	// ModeProgram runs a multi-line AppleScript program.
	ModeProgram Mode = instrumentation.ModeProgram

	// ModeURL opens a URL with the system URL handler.
	ModeURL Mode = instrumentation.ModeURL
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Recorder receives one observation per automation run.
// *instrumentation.Metrics satisfies it.
type Recorder interface {
	RecordAutomation(ctx context.Context, mode, status string, duration time.Duration)
}

// programEscaper escapes a program for a double-quoted sh argument.
var programEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// CommandLine returns the command and arguments that run script in mode.
//
// Statements are single-quoted for the shell, programs are escaped for a
// double-quoted shell argument, and URLs are passed to open verbatim.
func CommandLine(script string, mode Mode) (string, []string, error) {
	switch mode {
	case ModeStatement:
		return "/bin/sh", []string{"-c", "osascript -e " + shellescape.Quote(script)}, nil
	case ModeProgram:
		return "/bin/sh", []string{"-c", `osascript -e "` + programEscaper.Replace(script) + `"`}, nil
	case ModeURL:
		return "open", []string{script}, nil
	default:
		return "", nil, fmt.Errorf("unsupported execution mode %q", mode)
	}
}

// Executor runs AppleScript and URL commands on the host.
type Executor struct {
	runner  Runner
	logger  logging.Logger
	metrics Recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Recorder) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// New creates an Executor that runs real processes unless WithRunner is given.
func New(opts ...Option) *Executor {
	e := &Executor{
		runner: ExecRunner{},
		logger: logging.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes script in the given mode and returns the trimmed standard output.
//
// Output on stderr with an empty stdout is a failure even when the process
// exits zero. Failures are returned as *Error.
func (e *Executor) Run(ctx context.Context, script string, mode Mode) (string, error) {
	name, args, err := CommandLine(script, mode)
	if err != nil {
		return "", err
	}

	ctx, span := instrumentation.StartAutomationSpan(ctx, mode.String(),
		attribute.Int(instrumentation.SpanAttrScriptBytes, len(script)),
	)
	defer span.End()

	start := time.Now()
	stdout, stderr, runErr := e.runner.Run(ctx, name, args...)
	duration := time.Since(start)

	out := strings.TrimSpace(stdout)
	errText := strings.TrimSpace(stderr)

	var result error
	if (errText != "" && out == "") || runErr != nil {
		result = newError(mode, errText, runErr)
	}

	status := instrumentation.StatusSuccess
	if result != nil {
		status = instrumentation.StatusError
	}
	if e.metrics != nil {
		e.metrics.RecordAutomation(ctx, mode.String(), status, duration)
	}

	if result != nil {
		instrumentation.SetSpanError(span, result)
		e.logger.Warn("automation failed",
			logging.Mode(mode.String()),
			logging.Duration(duration),
			slog.String("error_kind", string(KindOf(result))),
			logging.Err(result),
		)
		return "", result
	}

	instrumentation.SetSpanSuccess(span)
	e.logger.Debug("automation completed",
		logging.Mode(mode.String()),
		logging.Duration(duration),
		logging.Text("script", script),
		logging.Text("output", out),
	)
	return out, nil
}
