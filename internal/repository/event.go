package repository

import (
	"context"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type EventRepository struct {
	db database.Querier
}

func NewEventRepository(db database.Querier) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, user_id, title, description, anchor_date,
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), recurrence, created_at`

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	recurrence := event.Recurrence
	if recurrence == "" {
		recurrence = "NONE"
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO event (user_id, title, description, anchor_date, start_time, end_time, recurrence)
		 VALUES ($1, $2, $3, $4, $5::time, $6::time, $7)
		 RETURNING id, recurrence, created_at`,
		event.UserID, event.Title, event.Description, models.NormalizeDate(event.AnchorDate),
		event.StartTime, event.EndTime, recurrence,
	).Scan(&event.EventID, &event.Recurrence, &event.CreatedAt)
}

func (r *EventRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE user_id = $1
		 ORDER BY anchor_date ASC, start_time ASC NULLS FIRST, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event WHERE id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&event.EventID, &event.UserID, &event.Title, &event.Description, &event.AnchorDate,
		&event.StartTime, &event.EndTime, &event.Recurrence, &event.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return event, nil
}

// ListAnchoredBy returns events that may have occurrences on or before end:
// every event whose anchor is not after end.
func (r *EventRepository) ListAnchoredBy(ctx context.Context, userID int64, end time.Time) ([]*models.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE user_id = $1 AND anchor_date <= $2
		 ORDER BY anchor_date ASC, id ASC`,
		userID, models.NormalizeDate(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

func (r *EventRepository) Delete(ctx context.Context, eventID, userID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM event WHERE id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventRepository) scanEvents(rows rowScanner) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.EventID, &event.UserID, &event.Title, &event.Description,
			&event.AnchorDate, &event.StartTime, &event.EndTime, &event.Recurrence, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
