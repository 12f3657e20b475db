package repository

import (
	"context"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type UserRepository struct {
	db database.Querier
}

func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, user_name, current_streak, longest_streak, last_completed_date`

func (r *UserRepository) GetOrCreate(ctx context.Context, userID int64, userName string) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`INSERT INTO "user" (user_id, user_name) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_name = EXCLUDED.user_name
		 RETURNING `+userColumns,
		userID, userName,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE user_id = $1`,
		userID,
	))
}

// GetForUpdate reads the user and locks the row until the transaction ends.
func (r *UserRepository) GetForUpdate(ctx context.Context, userID int64) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM "user" WHERE user_id = $1 FOR UPDATE`,
		userID,
	))
}

func (r *UserRepository) UpdateStreak(ctx context.Context, userID int64, current, longest int, lastCompleted *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE "user" SET current_streak = $1, longest_streak = $2, last_completed_date = $3
		 WHERE user_id = $4`,
		current, longest, lastCompleted, userID,
	)
	return err
}

func (r *UserRepository) scanOne(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.UserID, &user.UserName, &user.CurrentStreak, &user.LongestStreak, &user.LastCompletedDate)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}
