package calendar

import (
	"fmt"
	"strings"
)

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteAppleScript returns s as an AppleScript string literal.
func quoteAppleScript(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

// EventRangeScript returns a program that prints every event starting in
// [today 00:00, today 00:00 + days) as calendar|title|start|end|location lines.
//
// The range is computed with the host's own clock so no date literal has to
// survive a locale round trip. A calendar whose query fails is skipped.
func EventRangeScript(application string, days int) string {
	var b strings.Builder
	b.WriteString("set startDate to current date\n")
	b.WriteString("set time of startDate to 0\n")
	fmt.Fprintf(&b, "set endDate to startDate + (%d * days)\n", days)
	b.WriteString("set output to \"\"\n")
	fmt.Fprintf(&b, "tell application %s\n", quoteAppleScript(application))
	b.WriteString("\trepeat with cal in calendars\n")
	b.WriteString("\t\ttry\n")
	b.WriteString("\t\t\tset calName to name of cal\n")
	b.WriteString("\t\t\tset calEvents to (every event of cal whose start date >= startDate and start date < endDate)\n")
	b.WriteString("\t\t\trepeat with ev in calEvents\n")
	b.WriteString("\t\t\t\tset evLocation to location of ev\n")
	b.WriteString("\t\t\t\tif evLocation is missing value then set evLocation to \"\"\n")
	b.WriteString("\t\t\t\tset evStart to (start date of ev) as «class isot» as string\n")
	b.WriteString("\t\t\t\tset evEnd to (end date of ev) as «class isot» as string\n")
	b.WriteString("\t\t\t\tset output to output & calName & \"|\" & (summary of ev) & \"|\" & evStart & \"|\" & evEnd & \"|\" & evLocation & linefeed\n")
	b.WriteString("\t\t\tend repeat\n")
	b.WriteString("\t\tend try\n")
	b.WriteString("\tend repeat\n")
	b.WriteString("end tell\n")
	b.WriteString("return output")
	return b.String()
}

// CalendarsScript returns a program that prints one calendar name per line.
func CalendarsScript(application string) string {
	var b strings.Builder
	b.WriteString("set output to \"\"\n")
	fmt.Fprintf(&b, "tell application %s\n", quoteAppleScript(application))
	b.WriteString("\trepeat with cal in calendars\n")
	b.WriteString("\t\tset calName to name of cal\n")
	b.WriteString("\t\tset calColor to color of cal\n")
	b.WriteString("\t\tset output to output & calName & linefeed\n")
	b.WriteString("\tend repeat\n")
	b.WriteString("end tell\n")
	b.WriteString("return output")
	return b.String()
}

// CompanionRunningScript returns a statement that prints "true" when the
// companion application process is running.
func CompanionRunningScript(companion string) string {
	return fmt.Sprintf(`tell application "System Events" to exists process %s`, quoteAppleScript(companion))
}

// CalendarAccessScript returns a statement that counts calendars. It fails
// with -1743 when Automation access to the calendar application is missing.
func CalendarAccessScript(application string) string {
	return fmt.Sprintf("tell application %s to count calendars", quoteAppleScript(application))
}

// ParseSentenceScript returns the scripting variant of event creation.
// Calendar and notes are appended to the sentence as /calendar and /note
// directives understood by the companion's parser.
func ParseSentenceScript(companion string, ev NewEvent) string {
	text := ev.Sentence
	if ev.Calendar != "" {
		text += " /calendar " + ev.Calendar
	}
	if ev.Notes != "" {
		text += " /note " + ev.Notes
	}

	script := fmt.Sprintf("tell application %s to parse sentence %s", quoteAppleScript(companion), quoteAppleScript(text))
	if ev.AddImmediately {
		script += " with add immediately"
	}
	return script
}
