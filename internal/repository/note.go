package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type NoteRepository struct {
	db database.Querier
}

func NewNoteRepository(db database.Querier) *NoteRepository {
	return &NoteRepository{db: db}
}

// CreateForBlock bulk-inserts contents as the block's notes, positioned from
// 0 in slice order.
func (r *NoteRepository) CreateForBlock(ctx context.Context, userID, blockID int64, contents []string) error {
	if len(contents) == 0 {
		return nil
	}
	rows := make([][]any, len(contents))
	for i, content := range contents {
		rows[i] = []any{userID, blockID, i, content}
	}
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"note"},
		[]string{"user_id", "time_block_id", "position", "content"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (r *NoteRepository) ListByBlock(ctx context.Context, blockID int64) ([]*models.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, time_block_id, position, content, created_at
		 FROM note WHERE time_block_id = $1
		 ORDER BY position ASC, id ASC`,
		blockID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.NoteID, &note.UserID, &note.TimeBlockID, &note.Position,
			&note.Content, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
