package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/dayline/internal/models"
)

// ErrInvalidRange is returned when a query window starts after it ends.
var ErrInvalidRange = errors.New("recurrence: window start is after window end")

// Rule is an anchored recurrence. Anchor is treated as a UTC calendar date.
type Rule struct {
	SourceID int64
	Anchor   time.Time
	Kind     Kind
}

// Occurrence is one date on which a rule fires. IsOriginal is set only for
// the occurrence that falls on the anchor itself.
type Occurrence struct {
	SourceID   int64     `json:"source_id"`
	AnchorDate time.Time `json:"anchor_date"`
	Date       time.Time `json:"occurrence_date"`
	IsOriginal bool      `json:"is_original"`
}

// ValidateWindow rejects windows whose start is after their end.
func ValidateWindow(start, end time.Time) error {
	if models.NormalizeDate(start).After(models.NormalizeDate(end)) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, models.DateKey(start), models.DateKey(end))
	}
	return nil
}

// Expand returns the occurrences of rule inside the inclusive window
// [start, end], in ascending date order. Dates before the anchor are never
// returned. The result depends only on the arguments.
func Expand(rule Rule, start, end time.Time) ([]Occurrence, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	anchor := models.NormalizeDate(rule.Anchor)
	start = models.NormalizeDate(start)
	end = models.NormalizeDate(end)
	rule.Anchor = anchor

	if anchor.After(end) {
		return nil, nil
	}

	switch rule.Kind {
	case None:
		if anchor.Before(start) {
			return nil, nil
		}
		return []Occurrence{rule.occurrence(anchor)}, nil
	case Daily:
		return expandFixed(rule, rrule.DAILY, start, end)
	case Weekly:
		return expandFixed(rule, rrule.WEEKLY, start, end)
	case Monthly:
		return expandStepped(rule, start, end, monthsBetween(anchor, start), addMonthsClamped), nil
	case Yearly:
		return expandStepped(rule, start, end, start.Year()-anchor.Year()-1, addYearsClamped), nil
	case Weekdays:
		return expandByWeekday(rule, start, end, isWeekday), nil
	case Weekends:
		return expandByWeekday(rule, start, end, isWeekend), nil
	default:
		return nil, fmt.Errorf("recurrence: unsupported kind %s", rule.Kind)
	}
}

func (r Rule) occurrence(date time.Time) Occurrence {
	return Occurrence{
		SourceID:   r.SourceID,
		AnchorDate: r.Anchor,
		Date:       date,
		IsOriginal: date.Equal(r.Anchor),
	}
}

// expandFixed handles kinds with a constant interval, which map directly
// onto an RRULE with no BY* parts.
func expandFixed(rule Rule, freq rrule.Frequency, start, end time.Time) ([]Occurrence, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: 1,
		Dtstart:  rule.Anchor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rrule: %w", err)
	}

	from := start
	if rule.Anchor.After(from) {
		from = rule.Anchor
	}

	var out []Occurrence
	for _, d := range r.Between(from, end, true) {
		out = append(out, rule.occurrence(models.NormalizeDate(d)))
	}
	return out, nil
}

// expandStepped walks index i upward from skip (never below 0), computing
// step(anchor, i) until it passes end. step must be non-decreasing in i.
func expandStepped(rule Rule, start, end time.Time, skip int, step func(time.Time, int) time.Time) []Occurrence {
	if skip < 0 {
		skip = 0
	}

	var out []Occurrence
	for i := skip; ; i++ {
		d := step(rule.Anchor, i)
		if d.After(end) {
			break
		}
		if d.Before(start) {
			continue
		}
		out = append(out, rule.occurrence(d))
	}
	return out
}

// expandByWeekday walks day by day from max(anchor, start) to end.
func expandByWeekday(rule Rule, start, end time.Time, match func(time.Time) bool) []Occurrence {
	from := start
	if rule.Anchor.After(from) {
		from = rule.Anchor
	}

	var out []Occurrence
	for d := from; !d.After(end); d = d.AddDate(0, 0, 1) {
		if match(d) {
			out = append(out, rule.occurrence(d))
		}
	}
	return out
}

// addMonthsClamped adds i months to anchor. When the target month is too
// short for the anchor's day of month, the last day of that month is used.
func addMonthsClamped(anchor time.Time, i int) time.Time {
	first := time.Date(anchor.Year(), anchor.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
	return clampDay(first, anchor.Day())
}

// addYearsClamped adds i years to anchor; Feb 29 becomes Feb 28 in common
// years.
func addYearsClamped(anchor time.Time, i int) time.Time {
	first := time.Date(anchor.Year()+i, anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	return clampDay(first, anchor.Day())
}

func clampDay(firstOfMonth time.Time, day int) time.Time {
	last := daysIn(firstOfMonth)
	if day > last {
		day = last
	}
	return firstOfMonth.AddDate(0, 0, day-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// monthsBetween is a lower bound for the first monthly index that can reach
// start; one month of slack covers the clamp.
func monthsBetween(anchor, start time.Time) int {
	return (start.Year()-anchor.Year())*12 + int(start.Month()) - int(anchor.Month()) - 1
}

func isWeekday(d time.Time) bool {
	return models.ISOWeekday(d) <= 5
}

func isWeekend(d time.Time) bool {
	return models.ISOWeekday(d) >= 6
}
