package calendar

import (
	"testing"
	"time"
)

func TestParseEvents_TwoRecords(t *testing.T) {
	raw := "Work|Standup|Mon Jan 1 2025 9:00:00 AM|Mon Jan 1 2025 9:30:00 AM|Room 1\n" +
		"Home|Dentist|Mon Jan 1 2025 2:00:00 PM|Mon Jan 1 2025 3:00:00 PM|\n"

	events, malformed := ParseEvents(raw)

	if malformed != 0 {
		t.Errorf("malformed = %d, want 0", malformed)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Standup" || events[1].Title != "Dentist" {
		t.Errorf("unexpected order: %q, %q", events[0].Title, events[1].Title)
	}
	if events[0].Location != "Room 1" {
		t.Errorf("Location = %q, want %q", events[0].Location, "Room 1")
	}
	if events[1].Location != "" {
		t.Errorf("Location = %q, want empty", events[1].Location)
	}

	wantStart := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.Local)
	if !events[0].StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", events[0].StartTime, wantStart)
	}
	if events[0].Start != wantStart.Format(time.RFC3339) {
		t.Errorf("Start = %q, want RFC 3339 rendering", events[0].Start)
	}
}

func TestParseEvents_SortsAscending(t *testing.T) {
	raw := "Work|Late|2025-03-04T17:00:00|2025-03-04T18:00:00|\n" +
		"Work|Middle|2025-03-04T12:00:00|2025-03-04T13:00:00|\n" +
		"Home|Early|2025-03-04T07:30:00|2025-03-04T08:00:00|Kitchen\n"

	events, _ := ParseEvents(raw)

	want := []string{"Early", "Middle", "Late"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, title := range want {
		if events[i].Title != title {
			t.Errorf("events[%d].Title = %q, want %q", i, events[i].Title, title)
		}
	}
}

func TestParseEvents_StableForEqualStarts(t *testing.T) {
	raw := "A|first|2025-03-04T09:00:00|2025-03-04T10:00:00|\n" +
		"B|second|2025-03-04T09:00:00|2025-03-04T09:30:00|\n" +
		"C|third|2025-03-04T09:00:00|2025-03-04T11:00:00|\n"

	events, _ := ParseEvents(raw)

	for i, title := range []string{"first", "second", "third"} {
		if events[i].Title != title {
			t.Errorf("events[%d].Title = %q, want %q", i, events[i].Title, title)
		}
	}
}

func TestParseEvents_SkipsBlankLines(t *testing.T) {
	events, malformed := ParseEvents("\n   \nWork|X|t1|t2|\n")

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if malformed != 0 {
		t.Errorf("malformed = %d, want 0", malformed)
	}
	ev := events[0]
	if ev.Start != "t1" || ev.End != "t2" {
		t.Errorf("unparseable timestamps should be kept raw, got %q and %q", ev.Start, ev.End)
	}
	if !ev.StartTime.IsZero() {
		t.Errorf("StartTime = %v, want zero", ev.StartTime)
	}
}

func TestParseEvents_MalformedLines(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantEvent Event
	}{
		{
			name:      "no delimiter",
			raw:       "just some text",
			wantEvent: Event{Calendar: "just some text"},
		},
		{
			name:      "missing location field",
			raw:       "Work|Review|x|y",
			wantEvent: Event{Calendar: "Work", Title: "Review", Start: "x", End: "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, malformed := ParseEvents(tt.raw)
			if malformed != 1 {
				t.Errorf("malformed = %d, want 1", malformed)
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0] != tt.wantEvent {
				t.Errorf("event = %+v, want %+v", events[0], tt.wantEvent)
			}
		})
	}
}

func TestParseEvents_LocationKeepsDelimiters(t *testing.T) {
	events, _ := ParseEvents("Work|Offsite|2025-03-04T09:00:00|2025-03-04T17:00:00|Hall A | Floor 2\r\n")

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Location != "Hall A | Floor 2" {
		t.Errorf("Location = %q, want %q", events[0].Location, "Hall A | Floor 2")
	}
}

func TestParseTime_Layouts(t *testing.T) {
	want := time.Date(2025, time.June, 2, 15, 4, 5, 0, time.Local)

	tests := []struct {
		name string
		raw  string
	}{
		{"iso", "2025-06-02T15:04:05"},
		{"short english", "Mon Jun 2 2025 3:04:05 PM"},
		{"long english", "Monday, June 2, 2025 at 3:04:05 PM"},
		{"narrow no-break space", "Monday, June 2, 2025 at 3:04:05\u202fPM"},
		{"day first 24h", "Monday, 2 June 2025 at 15:04:05"},
		{"sql style", "2025-06-02 15:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rendered := parseTime(tt.raw)
			if !got.Equal(want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.raw, got, want)
			}
			if rendered != want.Format(time.RFC3339) {
				t.Errorf("rendered = %q, want %q", rendered, want.Format(time.RFC3339))
			}
		})
	}
}

func TestParseCalendars(t *testing.T) {
	calendars := ParseCalendars("Work\n\nHome\r\n  \nBirthdays\n")

	want := []string{"Work", "Home", "Birthdays"}
	if len(calendars) != len(want) {
		t.Fatalf("expected %d calendars, got %d", len(want), len(calendars))
	}
	for i, name := range want {
		if calendars[i].Name != name {
			t.Errorf("calendars[%d].Name = %q, want %q", i, calendars[i].Name, name)
		}
	}
}
