package models

import "time"

type Note struct {
	NoteID      int64     `json:"note_id"`
	UserID      int64     `json:"user_id"`
	TimeBlockID *int64    `json:"time_block_id"`
	Position    int       `json:"position"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
