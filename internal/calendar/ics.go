package calendar

import (
	"context"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/hray3182/dayline/internal/models"
)

const productID = "-//dayline//calendar export//EN"

// uidNamespace seeds name-based UIDs so an event keeps its UID across
// exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://dayline/events"))

// EventUID returns the stable iCalendar UID of an event.
func EventUID(eventID int64) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.FormatInt(eventID, 10))).String() + "@dayline"
}

// ExportICS renders the user's events that occur in [start, end] as an
// iCalendar document. Recurring events are exported once as a series with
// their RRULE, anchored on the original date.
func (s *Service) ExportICS(ctx context.Context, userID int64, start, end time.Time) (string, error) {
	occ, err := s.Occurrences(ctx, userID, start, end)
	if err != nil {
		return "", err
	}

	seen := make(map[int64]bool)
	var events []*models.Event
	for _, o := range occ {
		if !seen[o.Event.EventID] {
			seen[o.Event.EventID] = true
			events = append(events, o.Event)
		}
	}

	// Series keep the order in which they first occur.
	return BuildICS(events, s.now())
}

// BuildICS serializes events into one VCALENDAR. stamp is written as
// DTSTAMP on every component.
func BuildICS(events []*models.Event, stamp time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		rule, err := ruleOf(e)
		if err != nil {
			return "", err
		}

		ev := cal.AddEvent(EventUID(e.EventID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}

		anchor := models.NormalizeDate(e.AnchorDate)
		if e.IsAllDay() {
			ev.SetAllDayStartAt(anchor)
			ev.SetAllDayEndAt(anchor.AddDate(0, 0, 1))
		} else {
			startAt := atClock(anchor, e.StartTime)
			endAt := startAt
			if e.EndTime != nil {
				endAt = atClock(anchor, e.EndTime)
			}
			ev.SetStartAt(startAt)
			ev.SetEndAt(endAt)
		}

		if e.IsRecurring() {
			if rrule, ok := rule.RRule(); ok {
				ev.AddRrule(rrule)
				ev.SetProperty(ics.ComponentProperty("COMMENT"), rule.HumanReadable())
			}
		}
	}

	return cal.Serialize(), nil
}
