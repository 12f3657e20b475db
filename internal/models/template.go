package models

import (
	"fmt"
	"time"
)

// Template is a recurring time-block definition. DaysOfWeek uses ISO
// numbering, Monday=1 through Sunday=7.
type Template struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	StartTime   string     `json:"start_time"` // HH:MM
	EndTime     string     `json:"end_time"`   // HH:MM
	Color       string     `json:"color"`
	DaysOfWeek  []int      `json:"days_of_week"`
	IsActive    bool       `json:"is_active"`
	ActiveUntil *time.Time `json:"active_until"`
	Notes       []string   `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RunsOn reports whether the template applies to the given ISO weekday.
func (t *Template) RunsOn(isoWeekday int) bool {
	for _, d := range t.DaysOfWeek {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// ActiveOn reports whether date is on or before the template's cutoff.
func (t *Template) ActiveOn(date time.Time) bool {
	if t.ActiveUntil == nil {
		return true
	}
	return !NormalizeDate(*t.ActiveUntil).Before(NormalizeDate(date))
}

// Validate checks the fields a caller supplies on creation.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.DaysOfWeek) == 0 {
		return fmt.Errorf("template needs at least one weekday")
	}
	for _, d := range t.DaysOfWeek {
		if d < 1 || d > 7 {
			return fmt.Errorf("invalid weekday %d (want 1..7)", d)
		}
	}
	if _, err := time.Parse("15:04", t.StartTime); err != nil {
		return fmt.Errorf("invalid start time %q: %w", t.StartTime, err)
	}
	if _, err := time.Parse("15:04", t.EndTime); err != nil {
		return fmt.Errorf("invalid end time %q: %w", t.EndTime, err)
	}
	return nil
}

// MaterializationExclusion marks a (template, date) pair that must not be
// materialized again after the user deleted that occurrence.
type MaterializationExclusion struct {
	TemplateID int64     `json:"template_id"`
	Date       time.Time `json:"date"`
}

// OccurrenceKey identifies one materialized (template, date) slot.
type OccurrenceKey struct {
	TemplateID int64
	Date       time.Time
}

// Key returns a map key for the slot, e.g. "12|2024-01-31".
func (k OccurrenceKey) Key() string {
	return fmt.Sprintf("%d|%s", k.TemplateID, DateKey(k.Date))
}
