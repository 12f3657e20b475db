package materialize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/completion"
	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/recurrence"
	"github.com/hray3182/dayline/internal/repository"
)

// occurrenceConstraint is the unique key over (template_id, day_id) that
// makes a materialized slot exist at most once.
const occurrenceConstraint = "time_block_template_day_key"

// errSlotTaken is returned inside a task's savepoint when another writer
// already created the slot.
var errSlotTaken = errors.New("materialized slot already exists")

// Materializer turns recurring templates into persisted days and time
// blocks. Every method is safe to call repeatedly and concurrently.
type Materializer struct {
	db     *database.DB
	engine *completion.Engine
	now    func() time.Time
}

func New(db *database.DB, engine *completion.Engine) *Materializer {
	return &Materializer{db: db, engine: engine, now: time.Now}
}

// WithClock returns a copy of the materializer that reads "today" from now.
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	return &Materializer{db: m.db, engine: m.engine.WithClock(now), now: now}
}

// Materialize makes sure each active template has a time block on every
// matching date in [start, end]. Missing slots are created in one
// transaction; slots that exist or were excluded by the user are skipped.
func (m *Materializer) Materialize(ctx context.Context, userID int64, start, end time.Time) error {
	if err := recurrence.ValidateWindow(start, end); err != nil {
		return err
	}
	start = models.NormalizeDate(start)
	end = models.NormalizeDate(end)

	repos := repository.New(m.db.Pool)

	templates, err := repos.Template.ListActiveForWindow(ctx, userID, start)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	if len(templates) == 0 {
		return nil
	}

	ids := make([]int64, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}

	existing, err := repos.TimeBlock.MaterializedKeys(ctx, ids, start, end)
	if err != nil {
		return fmt.Errorf("failed to load materialized blocks: %w", err)
	}
	excluded, err := repos.Exclusion.ListKeys(ctx, ids, start, end)
	if err != nil {
		return fmt.Errorf("failed to load exclusions: %w", err)
	}

	tasks := plan(templates, keySet(existing), keySet(excluded), start, end)
	if len(tasks) == 0 {
		return nil
	}

	created, skipped := 0, 0
	err = m.db.RunInTx(ctx, func(tx pgx.Tx) error {
		created, skipped = 0, 0
		// Days that were complete before gaining a new, open block.
		var reopened []int64
		seen := make(map[int64]bool)

		for _, t := range tasks {
			day, err := materializeOne(ctx, tx, userID, t)
			switch {
			case errors.Is(err, errSlotTaken):
				skipped++
			case err != nil:
				return err
			default:
				created++
				if day.IsCompleted && !seen[day.ID] {
					seen[day.ID] = true
					reopened = append(reopened, day.ID)
				}
			}
		}

		for _, dayID := range reopened {
			if err := m.engine.UpdateCompletionStatusTx(ctx, tx, dayID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to materialize templates for user %d: %w", userID, err)
	}

	log.Printf("[INFO] materialized %d block(s) for user %d in %s..%s (%d already present)",
		created, userID, models.DateKey(start), models.DateKey(end), skipped)
	return nil
}

// materializeOne creates one slot inside a savepoint and returns the day as
// it was before the block was added. A unique violation on the occurrence
// key rolls back only this slot, including its order counter increment, and
// reports errSlotTaken.
func materializeOne(ctx context.Context, tx pgx.Tx, userID int64, t task) (*models.Day, error) {
	var day *models.Day
	err := pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
		repos := repository.New(sp)

		var err error
		day, err = repos.Day.Upsert(ctx, userID, t.date)
		if err != nil {
			return fmt.Errorf("failed to upsert day %s: %w", models.DateKey(t.date), err)
		}

		order, err := repos.Day.NextBlockOrder(ctx, day.ID)
		if err != nil {
			return fmt.Errorf("failed to reserve block order: %w", err)
		}

		templateID := t.template.ID
		block := &models.TimeBlock{
			DayID:       day.ID,
			TemplateID:  &templateID,
			Order:       order,
			IsCompleted: false,
			StartTime:   t.template.StartTime,
			EndTime:     t.template.EndTime,
			Name:        t.template.Name,
			Color:       t.template.Color,
		}
		if err := repos.TimeBlock.Create(ctx, block); err != nil {
			if database.IsUniqueViolation(err, occurrenceConstraint) {
				return errSlotTaken
			}
			return fmt.Errorf("failed to create time block: %w", err)
		}

		if err := repos.Note.CreateForBlock(ctx, userID, block.ID, t.template.Notes); err != nil {
			return fmt.Errorf("failed to copy template notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

// DeactivateTemplate turns a template off with cutoff activeUntil (today if
// nil). With deleteFuture, the template's uncompleted blocks from today on
// are removed; completed and past blocks stay as history.
func (m *Materializer) DeactivateTemplate(ctx context.Context, userID, templateID int64, activeUntil *time.Time, deleteFuture bool) (*models.Template, error) {
	today := models.NormalizeDate(m.now())
	cutoff := today
	if activeUntil != nil {
		cutoff = models.NormalizeDate(*activeUntil)
	}

	var out *models.Template
	err := m.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repos := repository.New(tx)

		t, err := repos.Template.Deactivate(ctx, templateID, userID, cutoff)
		if err != nil {
			return fmt.Errorf("failed to deactivate template %d: %w", templateID, err)
		}
		out = t

		if !deleteFuture {
			return nil
		}

		dayIDs, err := repos.TimeBlock.DeleteIncompleteFrom(ctx, templateID, today)
		if err != nil {
			return fmt.Errorf("failed to delete future blocks: %w", err)
		}
		for _, dayID := range dayIDs {
			if err := repos.TimeBlock.CompactOrders(ctx, dayID); err != nil {
				return fmt.Errorf("failed to compact day %d: %w", dayID, err)
			}
			if err := m.engine.UpdateCompletionStatusTx(ctx, tx, dayID); err != nil {
				return err
			}
		}
		log.Printf("[INFO] template %d deactivated, removed future blocks on %d day(s)", templateID, len(dayIDs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTemplate validates and stores a new active template with its notes.
func (m *Materializer) CreateTemplate(ctx context.Context, t *models.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return m.db.RunInTx(ctx, func(tx pgx.Tx) error {
		return repository.New(tx).Template.Create(ctx, t)
	})
}

// DeleteTemplate removes a template. Blocks it created remain as unlinked
// history.
func (m *Materializer) DeleteTemplate(ctx context.Context, userID, templateID int64) error {
	return repository.New(m.db.Pool).Template.Delete(ctx, templateID, userID)
}
