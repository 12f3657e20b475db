package models

import "time"

// Day is one calendar date of a user's plan. IsCompleted is a cache derived
// from the day's time blocks and is only written by the completion engine.
type Day struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Date               time.Time `json:"date"`
	IsCompleted        bool      `json:"is_completed"`
	NextTimeBlockOrder int       `json:"next_time_block_order"`
}

// ActiveDay is a day that owns at least one time block, as seen by the
// streak computation.
type ActiveDay struct {
	Date        time.Time
	IsCompleted bool
}
