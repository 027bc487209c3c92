package calendar

import (
	"net/url"
	"strings"
)

// EncodeComponent percent-encodes s for use as a URL query value or path
// segment. Spaces become %20, never '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ParseURL returns the companion URL that parses ev.Sentence into a new event.
// Parameters appear in the order s, add, calendarName, n; optional ones only
// when set.
func ParseURL(scheme string, ev NewEvent) string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://parse?s=")
	b.WriteString(EncodeComponent(ev.Sentence))
	if ev.AddImmediately {
		b.WriteString("&add=1")
	}
	if ev.Calendar != "" {
		b.WriteString("&calendarName=")
		b.WriteString(EncodeComponent(ev.Calendar))
	}
	if ev.Notes != "" {
		b.WriteString("&n=")
		b.WriteString(EncodeComponent(ev.Notes))
	}
	return b.String()
}

// ShowDateURL returns the companion URL that shows the calendar at date.
// The date is passed through as given.
func ShowDateURL(scheme, date string) string {
	return scheme + "://show/calendar/" + EncodeComponent(date)
}

// ShowTodayURL returns the fallback navigation target.
func ShowTodayURL(scheme string) string {
	return ShowDateURL(scheme, "today")
}

// SearchURL returns the companion URL that runs a search for query.
func SearchURL(scheme, query string) string {
	return scheme + "://search?query=" + EncodeComponent(query)
}
