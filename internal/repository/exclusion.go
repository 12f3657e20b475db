package repository

import (
	"context"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type ExclusionRepository struct {
	db database.Querier
}

func NewExclusionRepository(db database.Querier) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

// Create records the tombstone; recording it twice is a no-op.
func (r *ExclusionRepository) Create(ctx context.Context, templateID int64, date time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO materialization_exclusion (template_id, date) VALUES ($1, $2)
		 ON CONFLICT (template_id, date) DO NOTHING`,
		templateID, models.NormalizeDate(date),
	)
	return err
}

func (r *ExclusionRepository) ListKeys(ctx context.Context, templateIDs []int64, start, end time.Time) ([]models.OccurrenceKey, error) {
	rows, err := r.db.Query(ctx,
		`SELECT template_id, date FROM materialization_exclusion
		 WHERE template_id = ANY($1) AND date >= $2 AND date <= $3`,
		templateIDs, models.NormalizeDate(start), models.NormalizeDate(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOccurrenceKeys(rows)
}
