package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/recurrence"
	"github.com/hray3182/dayline/internal/repository"
)

// EventOccurrence is one concrete showing of an event.
type EventOccurrence struct {
	Event      *models.Event
	Occurrence recurrence.Occurrence
}

// Start returns the occurrence's start; all-day events start at midnight.
func (o EventOccurrence) Start() time.Time {
	return atClock(o.Occurrence.Date, o.Event.StartTime)
}

type Service struct {
	db  *database.DB
	now func() time.Time
}

func New(db *database.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Occurrences lists the user's event occurrences in [start, end], ordered by
// date, start time and event id.
func (s *Service) Occurrences(ctx context.Context, userID int64, start, end time.Time) ([]EventOccurrence, error) {
	if err := recurrence.ValidateWindow(start, end); err != nil {
		return nil, err
	}

	events, err := repository.NewEventRepository(s.db.Pool).ListAnchoredBy(ctx, userID, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return Expand(events, start, end)
}

// Expand runs every event through the recurrence expander.
func Expand(events []*models.Event, start, end time.Time) ([]EventOccurrence, error) {
	var out []EventOccurrence
	for _, e := range events {
		rule, err := ruleOf(e)
		if err != nil {
			return nil, err
		}
		occ, err := recurrence.Expand(rule, start, end)
		if err != nil {
			return nil, err
		}
		for _, o := range occ {
			out = append(out, EventOccurrence{Event: e, Occurrence: o})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Start().Equal(b.Start()) {
			return a.Start().Before(b.Start())
		}
		return a.Event.EventID < b.Event.EventID
	})
	return out, nil
}

func ruleOf(e *models.Event) (recurrence.Rule, error) {
	kind, err := recurrence.ParseKind(e.Recurrence)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("event %d: %w", e.EventID, err)
	}
	return recurrence.Rule{SourceID: e.EventID, Anchor: e.AnchorDate, Kind: kind}, nil
}

// atClock places an HH:MM clock on a date; nil means midnight.
func atClock(date time.Time, clock *string) time.Time {
	date = models.NormalizeDate(date)
	if clock == nil {
		return date
	}
	t, err := time.Parse("15:04", *clock)
	if err != nil {
		return date
	}
	return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// CreateEvent validates the recurrence kind and clock fields and stores the
// event.
func (s *Service) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if _, err := recurrence.ParseKind(e.Recurrence); err != nil {
		return err
	}
	for _, c := range []*string{e.StartTime, e.EndTime} {
		if c == nil {
			continue
		}
		if _, err := time.Parse("15:04", *c); err != nil {
			return fmt.Errorf("invalid event time %q: %w", *c, err)
		}
	}
	if e.StartTime == nil && e.EndTime != nil {
		return fmt.Errorf("all-day event cannot have an end time")
	}
	e.AnchorDate = models.NormalizeDate(e.AnchorDate)
	return repository.NewEventRepository(s.db.Pool).Create(ctx, e)
}

func (s *Service) Events(ctx context.Context, userID int64) ([]*models.Event, error) {
	return repository.NewEventRepository(s.db.Pool).GetByUserID(ctx, userID)
}

func (s *Service) Event(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	return repository.NewEventRepository(s.db.Pool).GetByID(ctx, eventID, userID)
}

// DeleteEvent removes the event and, with it, every occurrence.
func (s *Service) DeleteEvent(ctx context.Context, userID, eventID int64) error {
	return repository.NewEventRepository(s.db.Pool).Delete(ctx, eventID, userID)
}
