package models

import "time"

// Event is a calendar entry anchored on a date with an optional recurrence
// kind (NONE, DAILY, WEEKLY, MONTHLY, YEARLY, WEEKDAYS, WEEKENDS).
type Event struct {
	EventID     int64     `json:"event_id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AnchorDate  time.Time `json:"anchor_date"`
	StartTime   *string   `json:"start_time"` // HH:MM, nil for all-day
	EndTime     *string   `json:"end_time"`
	Recurrence  string    `json:"recurrence"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsRecurring returns true if this event repeats
func (e *Event) IsRecurring() bool {
	return e.Recurrence != "" && e.Recurrence != "NONE"
}

// IsAllDay returns true if the event has no start time
func (e *Event) IsAllDay() bool {
	return e.StartTime == nil
}
