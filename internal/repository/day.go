package repository

import (
	"context"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type DayRepository struct {
	db database.Querier
}

func NewDayRepository(db database.Querier) *DayRepository {
	return &DayRepository{db: db}
}

const dayColumns = `id, user_id, date, is_completed, next_time_block_order`

// Upsert returns the day for (userID, date), creating it if absent. The
// conflict branch is a no-op update so RETURNING yields the existing row.
func (r *DayRepository) Upsert(ctx context.Context, userID int64, date time.Time) (*models.Day, error) {
	return scanDay(r.db.QueryRow(ctx,
		`INSERT INTO day (user_id, date) VALUES ($1, $2)
		 ON CONFLICT (user_id, date) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+dayColumns,
		userID, models.NormalizeDate(date),
	))
}

func (r *DayRepository) GetByID(ctx context.Context, dayID int64) (*models.Day, error) {
	return scanDay(r.db.QueryRow(ctx,
		`SELECT `+dayColumns+` FROM day WHERE id = $1`,
		dayID,
	))
}

// GetByIDForUser is the ownership-checked lookup.
func (r *DayRepository) GetByIDForUser(ctx context.Context, dayID, userID int64) (*models.Day, error) {
	return scanDay(r.db.QueryRow(ctx,
		`SELECT `+dayColumns+` FROM day WHERE id = $1 AND user_id = $2`,
		dayID, userID,
	))
}

// GetForUpdate reads the day and locks the row until the transaction ends.
func (r *DayRepository) GetForUpdate(ctx context.Context, dayID int64) (*models.Day, error) {
	return scanDay(r.db.QueryRow(ctx,
		`SELECT `+dayColumns+` FROM day WHERE id = $1 FOR UPDATE`,
		dayID,
	))
}

func (r *DayRepository) GetByDate(ctx context.Context, userID int64, date time.Time) (*models.Day, error) {
	return scanDay(r.db.QueryRow(ctx,
		`SELECT `+dayColumns+` FROM day WHERE user_id = $1 AND date = $2`,
		userID, models.NormalizeDate(date),
	))
}

// NextBlockOrder increments the day's order counter and returns the value it
// had before the increment, in one statement.
func (r *DayRepository) NextBlockOrder(ctx context.Context, dayID int64) (int, error) {
	var order int
	err := r.db.QueryRow(ctx,
		`UPDATE day SET next_time_block_order = next_time_block_order + 1
		 WHERE id = $1
		 RETURNING next_time_block_order - 1`,
		dayID,
	).Scan(&order)
	if err != nil {
		return 0, notFound(err)
	}
	return order, nil
}

func (r *DayRepository) SetCompleted(ctx context.Context, dayID int64, completed bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE day SET is_completed = $1 WHERE id = $2`,
		completed, dayID,
	)
	return err
}

// ListActiveSince returns the user's days that own at least one time block,
// dated on or after since, most recent first.
func (r *DayRepository) ListActiveSince(ctx context.Context, userID int64, since time.Time) ([]models.ActiveDay, error) {
	rows, err := r.db.Query(ctx,
		`SELECT d.date, d.is_completed
		 FROM day d
		 WHERE d.user_id = $1 AND d.date >= $2
		   AND EXISTS (SELECT 1 FROM time_block tb WHERE tb.day_id = d.id)
		 ORDER BY d.date DESC`,
		userID, models.NormalizeDate(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.ActiveDay
	for rows.Next() {
		var d models.ActiveDay
		if err := rows.Scan(&d.Date, &d.IsCompleted); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func scanDay(row interface{ Scan(dest ...any) error }) (*models.Day, error) {
	day := &models.Day{}
	err := row.Scan(&day.ID, &day.UserID, &day.Date, &day.IsCompleted, &day.NextTimeBlockOrder)
	if err != nil {
		return nil, notFound(err)
	}
	return day, nil
}
