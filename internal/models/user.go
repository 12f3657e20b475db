package models

import "time"

type User struct {
	UserID            int64      `json:"user_id"`
	UserName          string     `json:"user_name"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	LastCompletedDate *time.Time `json:"last_completed_date"`
}
