package calendar

import "time"

// Event is one calendar event read from the calendar application.
type Event struct {
	// Calendar is the name of the calendar holding the event.
	Calendar string `json:"calendar"`

	Title string `json:"title"`

	// Start and End are RFC 3339 timestamps when the host's rendering could
	// be parsed, otherwise the raw text as emitted.
	Start string `json:"start"`
	End   string `json:"end"`

	// Location is empty when the event has none.
	Location string `json:"location"`

	// StartTime and EndTime are the parsed timestamps; zero when unparseable.
	StartTime time.Time `json:"-"`
	EndTime   time.Time `json:"-"`
}

// Calendar is one calendar known to the calendar application.
type Calendar struct {
	Name string `json:"name"`
}

// NewEvent describes an event to hand to the companion application's
// natural-language parser.
type NewEvent struct {
	// Sentence is the natural-language description, e.g. "Lunch tomorrow at noon".
	Sentence string

	// Calendar optionally names the target calendar.
	Calendar string

	// Notes optionally attaches notes to the event.
	Notes string

	// AddImmediately skips the confirmation UI.
	AddImmediately bool
}

// EventRange is the result of a range query.
type EventRange struct {
	// Start is local midnight of the first day, by the caller's clock.
	Start time.Time

	// End is Start plus Days calendar days.
	End time.Time

	Days   int
	Events []Event

	// Malformed counts output lines with fewer than five fields.
	Malformed int
}

// Settings names the applications and URL scheme the client talks to.
type Settings struct {
	// Application is the scriptable calendar store (default "Calendar").
	Application string

	// Companion is the scheduling application (default "Fantastical").
	Companion string

	// URLScheme is the companion's URL scheme (default "x-fantastical3").
	URLScheme string

	// CreateStrategy is StrategyURL or StrategyAppleScript.
	CreateStrategy string
}

// Event creation strategies.
const (
	StrategyURL         = "url"
	StrategyAppleScript = "applescript"
)

// DefaultSettings returns the settings for macOS Calendar and Fantastical 3.
func DefaultSettings() Settings {
	return Settings{
		Application:    "Calendar",
		Companion:      "Fantastical",
		URLScheme:      "x-fantastical3",
		CreateStrategy: StrategyURL,
	}
}

// withDefaults fills empty fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Application == "" {
		s.Application = d.Application
	}
	if s.Companion == "" {
		s.Companion = d.Companion
	}
	if s.URLScheme == "" {
		s.URLScheme = d.URLScheme
	}
	if s.CreateStrategy == "" {
		s.CreateStrategy = d.CreateStrategy
	}
	return s
}
