package calendar

import (
	"slices"
	"strings"
	"time"
)

// FieldDelimiter separates fields on one line of script output.
const FieldDelimiter = "|"

// eventFields is the number of positional fields per event line:
// calendar, title, start, end, location.
const eventFields = 5

// timeLayouts are tried in order. The first is what «class isot» produces;
// the rest cover Calendar's locale-dependent "as string" renderings.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"Mon Jan 2 2006 3:04:05 PM",
	"Monday, January 2, 2006 at 3:04:05 PM",
	"Monday, 2 January 2006 at 15:04:05",
	"Monday, January 2, 2006 3:04:05 PM",
	"Mon Jan 2 2006 15:04:05",
	"2006-01-02 15:04:05",
}

var spaceNormalizer = strings.NewReplacer(
	"\u202f", " ",
	"\u00a0", " ",
)

// ParseEvents converts delimited script output into events sorted by start
// time. Ties keep their input order.
//
// Blank lines are skipped. A line with fewer than five fields yields empty
// strings for the missing fields and is counted in the returned malformed
// count.
func ParseEvents(raw string) ([]Event, int) {
	var (
		events    []Event
		malformed int
	)

	for _, line := range splitLines(raw) {
		fields := strings.SplitN(line, FieldDelimiter, eventFields)
		if len(fields) < eventFields {
			malformed++
			fields = append(fields, make([]string, eventFields-len(fields))...)
		}

		start, startRaw := parseTime(fields[2])
		end, endRaw := parseTime(fields[3])

		events = append(events, Event{
			Calendar:  fields[0],
			Title:     fields[1],
			Start:     startRaw,
			End:       endRaw,
			Location:  fields[4],
			StartTime: start,
			EndTime:   end,
		})
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return a.StartTime.Compare(b.StartTime)
	})

	return events, malformed
}

// ParseCalendars converts one-name-per-line script output into calendars.
func ParseCalendars(raw string) []Calendar {
	var calendars []Calendar
	for _, line := range splitLines(raw) {
		calendars = append(calendars, Calendar{Name: strings.TrimSpace(line)})
	}
	return calendars
}

// splitLines returns the non-blank lines of raw with trailing carriage
// returns removed.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseTime parses a timestamp rendered by the host in local time. It returns
// the zero time and the raw text when no layout matches.
func parseTime(raw string) (time.Time, string) {
	text := strings.TrimSpace(spaceNormalizer.Replace(raw))
	if text == "" {
		return time.Time{}, raw
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, t.Format(time.RFC3339)
		}
	}
	return time.Time{}, raw
}
