package repository

import (
	"context"
	"time"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type TimeBlockRepository struct {
	db database.Querier
}

func NewTimeBlockRepository(db database.Querier) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

const timeBlockColumns = `tb.id, tb.day_id, tb.template_id, tb."order", tb.is_completed,
	to_char(tb.start_time, 'HH24:MI'), to_char(tb.end_time, 'HH24:MI'), tb.name, tb.color`

func (r *TimeBlockRepository) Create(ctx context.Context, block *models.TimeBlock) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO time_block (day_id, template_id, "order", is_completed, start_time, end_time, name, color)
		 VALUES ($1, $2, $3, $4, $5::time, $6::time, $7, $8)
		 RETURNING id`,
		block.DayID, block.TemplateID, block.Order, block.IsCompleted,
		block.StartTime, block.EndTime, block.Name, block.Color,
	).Scan(&block.ID)
}

// GetByIDForUser is the ownership-checked lookup through the owning day.
func (r *TimeBlockRepository) GetByIDForUser(ctx context.Context, blockID, userID int64) (*models.TimeBlock, error) {
	block := &models.TimeBlock{}
	err := r.db.QueryRow(ctx,
		`SELECT `+timeBlockColumns+`
		 FROM time_block tb JOIN day d ON d.id = tb.day_id
		 WHERE tb.id = $1 AND d.user_id = $2`,
		blockID, userID,
	).Scan(&block.ID, &block.DayID, &block.TemplateID, &block.Order, &block.IsCompleted,
		&block.StartTime, &block.EndTime, &block.Name, &block.Color)
	if err != nil {
		return nil, notFound(err)
	}
	return block, nil
}

func (r *TimeBlockRepository) ListByDay(ctx context.Context, dayID int64) ([]*models.TimeBlock, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+timeBlockColumns+`
		 FROM time_block tb WHERE tb.day_id = $1
		 ORDER BY tb."order" ASC, tb.id ASC`,
		dayID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []*models.TimeBlock
	for rows.Next() {
		block := &models.TimeBlock{}
		if err := rows.Scan(&block.ID, &block.DayID, &block.TemplateID, &block.Order, &block.IsCompleted,
			&block.StartTime, &block.EndTime, &block.Name, &block.Color); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func (r *TimeBlockRepository) SetCompleted(ctx context.Context, blockID int64, completed bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE time_block SET is_completed = $1 WHERE id = $2`,
		completed, blockID,
	)
	return err
}

func (r *TimeBlockRepository) SetOrder(ctx context.Context, blockID int64, order int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE time_block SET "order" = $1 WHERE id = $2`,
		order, blockID,
	)
	return err
}

func (r *TimeBlockRepository) Delete(ctx context.Context, blockID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM time_block WHERE id = $1`,
		blockID,
	)
	return err
}

// CompactOrders renumbers the day's blocks to 0..n-1, keeping their
// relative order.
func (r *TimeBlockRepository) CompactOrders(ctx context.Context, dayID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE time_block tb SET "order" = s.pos
		 FROM (
		     SELECT id, ROW_NUMBER() OVER (ORDER BY "order", id) - 1 AS pos
		     FROM time_block WHERE day_id = $1
		 ) s
		 WHERE tb.id = s.id AND tb."order" <> s.pos`,
		dayID,
	)
	return err
}

// MaterializedKeys returns the (template, date) slots in [start, end] that
// already have a block for one of templateIDs.
func (r *TimeBlockRepository) MaterializedKeys(ctx context.Context, templateIDs []int64, start, end time.Time) ([]models.OccurrenceKey, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tb.template_id, d.date
		 FROM time_block tb JOIN day d ON d.id = tb.day_id
		 WHERE tb.template_id = ANY($1) AND d.date >= $2 AND d.date <= $3`,
		templateIDs, models.NormalizeDate(start), models.NormalizeDate(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOccurrenceKeys(rows)
}

// DeleteIncompleteFrom removes the template's uncompleted blocks dated on or
// after from, returning the ids of the days that lost a block.
func (r *TimeBlockRepository) DeleteIncompleteFrom(ctx context.Context, templateID int64, from time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM time_block tb
		 USING day d
		 WHERE tb.day_id = d.id AND tb.template_id = $1
		   AND d.date >= $2 AND NOT tb.is_completed
		 RETURNING tb.day_id`,
		templateID, models.NormalizeDate(from),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int64]bool)
	var dayIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			dayIDs = append(dayIDs, id)
		}
	}
	return dayIDs, rows.Err()
}

func scanOccurrenceKeys(rows rowScanner) ([]models.OccurrenceKey, error) {
	var keys []models.OccurrenceKey
	for rows.Next() {
		var k models.OccurrenceKey
		if err := rows.Scan(&k.TemplateID, &k.Date); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
