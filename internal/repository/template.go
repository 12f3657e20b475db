package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
)

type TemplateRepository struct {
	db database.Querier
}

func NewTemplateRepository(db database.Querier) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, user_id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	color, days_of_week, is_active, active_until, created_at`

// Create inserts the template and its notes in list order.
func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO template (user_id, name, start_time, end_time, color, days_of_week, is_active, active_until)
		 VALUES ($1, $2, $3::time, $4::time, $5, $6, TRUE, $7)
		 RETURNING id, is_active, created_at`,
		t.UserID, t.Name, t.StartTime, t.EndTime, t.Color, toInt32s(t.DaysOfWeek), t.ActiveUntil,
	).Scan(&t.ID, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return err
	}

	if len(t.Notes) == 0 {
		return nil
	}
	rows := make([][]any, len(t.Notes))
	for i, content := range t.Notes {
		rows[i] = []any{t.ID, i, content}
	}
	_, err = r.db.CopyFrom(ctx,
		pgx.Identifier{"template_note"},
		[]string{"template_id", "position", "content"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (r *TemplateRepository) GetByIDForUser(ctx context.Context, templateID, userID int64) (*models.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM template WHERE id = $1 AND user_id = $2`,
		templateID, userID,
	))
	if err != nil {
		return nil, err
	}
	if err := r.attachNotes(ctx, []*models.Template{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListActiveForWindow returns the user's active templates whose cutoff, if
// any, is not before windowStart. Notes are loaded.
func (r *TemplateRepository) ListActiveForWindow(ctx context.Context, userID int64, windowStart time.Time) ([]*models.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+templateColumns+`
		 FROM template
		 WHERE user_id = $1 AND is_active
		   AND (active_until IS NULL OR active_until >= $2)
		 ORDER BY start_time ASC, id ASC`,
		userID, models.NormalizeDate(windowStart),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachNotes(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ListUserIDsWithActive returns every user owning at least one active
// template.
func (r *TemplateRepository) ListUserIDsWithActive(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT user_id FROM template WHERE is_active ORDER BY user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Deactivate turns the template off with the given cutoff date.
func (r *TemplateRepository) Deactivate(ctx context.Context, templateID, userID int64, activeUntil time.Time) (*models.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx,
		`UPDATE template SET is_active = FALSE, active_until = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+templateColumns,
		models.NormalizeDate(activeUntil), templateID, userID,
	))
	if err != nil {
		return nil, err
	}
	if err := r.attachNotes(ctx, []*models.Template{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the template. Materialized blocks stay, unlinked.
func (r *TemplateRepository) Delete(ctx context.Context, templateID, userID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM template WHERE id = $1 AND user_id = $2`,
		templateID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) attachNotes(ctx context.Context, templates []*models.Template) error {
	if len(templates) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Template, len(templates))
	ids := make([]int64, len(templates))
	for i, t := range templates {
		byID[t.ID] = t
		ids[i] = t.ID
	}

	rows, err := r.db.Query(ctx,
		`SELECT template_id, content FROM template_note
		 WHERE template_id = ANY($1)
		 ORDER BY template_id, position, id`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var content string
		if err := rows.Scan(&id, &content); err != nil {
			return err
		}
		if t := byID[id]; t != nil {
			t.Notes = append(t.Notes, content)
		}
	}
	return rows.Err()
}

func scanTemplate(row interface{ Scan(dest ...any) error }) (*models.Template, error) {
	t := &models.Template{}
	var days []int32
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.StartTime, &t.EndTime,
		&t.Color, &days, &t.IsActive, &t.ActiveUntil, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	t.DaysOfWeek = make([]int, len(days))
	for i, d := range days {
		t.DaysOfWeek[i] = int(d)
	}
	return t, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
