package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
	"github.com/hray3182/dayline/internal/testutil"
)

func TestServiceOccurrencesAndExport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db)
	s := New(db)

	for _, e := range []*models.Event{
		{UserID: userID, Title: "Rent", AnchorDate: day(2024, 1, 31), Recurrence: "MONTHLY"},
		{UserID: userID, Title: "Retro", AnchorDate: day(2024, 1, 5), StartTime: clock("15:00"), EndTime: clock("16:00"), Recurrence: "WEEKLY"},
		{UserID: userID, Title: "Later", AnchorDate: day(2024, 6, 1)},
	} {
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("Create %s failed: %v", e.Title, err)
		}
	}

	occ, err := s.Occurrences(ctx, userID, day(2024, 2, 1), day(2024, 2, 29))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	var got []string
	for _, o := range occ {
		got = append(got, models.DateKey(o.Occurrence.Date)+" "+o.Event.Title)
	}
	want := []string{
		"2024-02-02 Retro",
		"2024-02-09 Retro",
		"2024-02-16 Retro",
		"2024-02-23 Retro",
		"2024-02-29 Rent",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %v, got %v", want, got)
	}

	doc, err := s.ExportICS(ctx, userID, day(2024, 2, 1), day(2024, 2, 29))
	if err != nil {
		t.Fatalf("ExportICS failed: %v", err)
	}
	if n := strings.Count(doc, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("Expected 2 exported series, got %d", n)
	}
	if strings.Contains(doc, "Later") {
		t.Error("event without occurrences in range was exported")
	}
}

func TestServiceEventLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db)
	s := New(db)

	if err := s.CreateEvent(ctx, &models.Event{UserID: userID, Title: "Bad", AnchorDate: day(2024, 1, 1), Recurrence: "HOURLY"}); err == nil {
		t.Error("Expected error for unknown recurrence")
	}
	if err := s.CreateEvent(ctx, &models.Event{UserID: userID, Title: "Bad", AnchorDate: day(2024, 1, 1), EndTime: clock("10:00")}); err == nil {
		t.Error("Expected error for end time without start time")
	}

	e := &models.Event{UserID: userID, Title: "Standup", AnchorDate: day(2024, 1, 1), StartTime: clock("09:00"), Recurrence: "WEEKDAYS"}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	got, err := s.Event(ctx, userID, e.EventID)
	if err != nil {
		t.Fatalf("Event failed: %v", err)
	}
	if got.StartTime == nil || *got.StartTime != "09:00" || got.EndTime != nil || got.Recurrence != "WEEKDAYS" {
		t.Errorf("stored event differs: %+v", got)
	}

	if _, err := s.Event(ctx, testutil.NewUserID(), e.EventID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user, got %v", err)
	}

	if err := s.DeleteEvent(ctx, userID, e.EventID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	events, err := s.Events(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events after delete, got %d", len(events))
	}
	if err := s.DeleteEvent(ctx, userID, e.EventID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}
