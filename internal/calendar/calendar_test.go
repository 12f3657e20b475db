package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/hray3182/dayline/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(s string) *string {
	return &s
}

func TestExpandOrdersOccurrences(t *testing.T) {
	events := []*models.Event{
		{EventID: 1, Title: "Gym", AnchorDate: day(2024, 1, 1), StartTime: clock("18:00"), Recurrence: "WEEKLY"},
		{EventID: 2, Title: "Standup", AnchorDate: day(2024, 1, 1), StartTime: clock("09:00"), Recurrence: "WEEKDAYS"},
		{EventID: 3, Title: "Holiday", AnchorDate: day(2024, 1, 2), Recurrence: "NONE"},
	}

	occ, err := Expand(events, day(2024, 1, 1), day(2024, 1, 2))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	var got []string
	for _, o := range occ {
		got = append(got, o.Start().Format("01-02 15:04")+" "+o.Event.Title)
	}
	want := []string{
		"01-01 09:00 Standup",
		"01-01 18:00 Gym",
		"01-02 00:00 Holiday",
		"01-02 09:00 Standup",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandRejectsUnknownRecurrence(t *testing.T) {
	events := []*models.Event{{EventID: 9, AnchorDate: day(2024, 1, 1), Recurrence: "FORTNIGHTLY"}}
	if _, err := Expand(events, day(2024, 1, 1), day(2024, 1, 31)); err == nil {
		t.Error("Expected error for unknown recurrence")
	}
}

func TestBuildICS(t *testing.T) {
	events := []*models.Event{
		{EventID: 1, Title: "Standup", AnchorDate: day(2024, 1, 1), StartTime: clock("09:00"), EndTime: clock("09:15"), Recurrence: "WEEKLY"},
		{EventID: 2, Title: "Birthday", AnchorDate: day(2024, 2, 29), Recurrence: "YEARLY"},
		{EventID: 3, Title: "Dentist", AnchorDate: day(2024, 3, 5), StartTime: clock("14:00"), Recurrence: "NONE"},
	}

	out, err := BuildICS(events, day(2024, 1, 1))
	if err != nil {
		t.Fatalf("BuildICS returned error: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Standup",
		"SUMMARY:Birthday",
		"SUMMARY:Dentist",
		"FREQ=WEEKLY",
		"FREQ=YEARLY",
		"COMMENT:every Monday",
		EventUID(1),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar does not contain %q", want)
		}
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("Expected 3 VEVENTs, got %d", got)
	}
	if got := strings.Count(out, "RRULE"); got != 2 {
		t.Errorf("Expected 2 RRULE lines, got %d", got)
	}
}

func TestEventUIDStable(t *testing.T) {
	if EventUID(42) != EventUID(42) {
		t.Error("EventUID is not stable")
	}
	if EventUID(42) == EventUID(43) {
		t.Error("EventUID collides for different events")
	}
}
