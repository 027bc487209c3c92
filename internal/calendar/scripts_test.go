package calendar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRangeScript(t *testing.T) {
	script := EventRangeScript("Calendar", 7)

	for _, want := range []string{
		"set startDate to current date",
		"set time of startDate to 0",
		"set endDate to startDate + (7 * days)",
		`tell application "Calendar"`,
		"repeat with cal in calendars",
		"whose start date >= startDate and start date < endDate",
		"if evLocation is missing value then",
		"«class isot»",
		"end try",
	} {
		assert.Contains(t, script, want)
	}

	// The per-calendar guard must wrap the query.
	assert.Less(t, strings.Index(script, "try"), strings.Index(script, "every event of cal"))
	assert.Less(t, strings.Index(script, "every event of cal"), strings.Index(script, "end try"))
}

func TestCalendarsScript(t *testing.T) {
	script := CalendarsScript("Calendar")

	assert.Contains(t, script, `tell application "Calendar"`)
	assert.Contains(t, script, "set calColor to color of cal")
	assert.Contains(t, script, "calName & linefeed")
	assert.NotContains(t, script, "calColor & ")
}

func TestStatementScripts(t *testing.T) {
	assert.Equal(t, `tell application "System Events" to exists process "Fantastical"`, CompanionRunningScript("Fantastical"))
	assert.Equal(t, `tell application "Calendar" to count calendars`, CalendarAccessScript("Calendar"))
}

func TestParseSentenceScript(t *testing.T) {
	tests := []struct {
		name string
		ev   NewEvent
		want string
	}{
		{
			name: "plain",
			ev:   NewEvent{Sentence: "Lunch tomorrow"},
			want: `tell application "Fantastical" to parse sentence "Lunch tomorrow"`,
		},
		{
			name: "directives and immediate add",
			ev:   NewEvent{Sentence: "Review", Calendar: "Work", Notes: "slides", AddImmediately: true},
			want: `tell application "Fantastical" to parse sentence "Review /calendar Work /note slides" with add immediately`,
		},
		{
			name: "escapes double quotes",
			ev:   NewEvent{Sentence: `Watch "Dune" at 8pm`},
			want: `tell application "Fantastical" to parse sentence "Watch \"Dune\" at 8pm"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSentenceScript("Fantastical", tt.ev))
		})
	}
}
