package timeblock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/completion"
	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
)

// Input is what a caller supplies to create a block by hand.
type Input struct {
	Name      string
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Color     string
}

func (in Input) validate() error {
	if in.Name == "" {
		return fmt.Errorf("time block name is required")
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return fmt.Errorf("invalid start time %q: %w", in.StartTime, err)
	}
	if _, err := time.Parse("15:04", in.EndTime); err != nil {
		return fmt.Errorf("invalid end time %q: %w", in.EndTime, err)
	}
	return nil
}

// Service applies time-block mutations and runs the completion cascade in
// the same transaction as each mutation.
type Service struct {
	db     *database.DB
	engine *completion.Engine
}

func New(db *database.DB, engine *completion.Engine) *Service {
	return &Service{db: db, engine: engine}
}

// Create adds a block to the user's day on date, creating the day if needed.
func (s *Service) Create(ctx context.Context, userID int64, date time.Time, in Input) (*models.TimeBlock, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var block *models.TimeBlock
	err := s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repos := repository.New(tx)

		day, err := repos.Day.Upsert(ctx, userID, date)
		if err != nil {
			return fmt.Errorf("failed to upsert day: %w", err)
		}
		order, err := repos.Day.NextBlockOrder(ctx, day.ID)
		if err != nil {
			return fmt.Errorf("failed to reserve block order: %w", err)
		}

		block = &models.TimeBlock{
			DayID:     day.ID,
			Order:     order,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Name:      in.Name,
			Color:     in.Color,
		}
		if err := repos.TimeBlock.Create(ctx, block); err != nil {
			return fmt.Errorf("failed to create time block: %w", err)
		}
		return s.engine.UpdateCompletionStatusTx(ctx, tx, day.ID)
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// SetCompleted toggles a block and cascades the change to its day and the
// user's streak.
func (s *Service) SetCompleted(ctx context.Context, userID, blockID int64, completed bool) error {
	return s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repos := repository.New(tx)

		block, err := repos.TimeBlock.GetByIDForUser(ctx, blockID, userID)
		if err != nil {
			return fmt.Errorf("time block %d: %w", blockID, err)
		}
		if block.IsCompleted == completed {
			return nil
		}
		if err := repos.TimeBlock.SetCompleted(ctx, blockID, completed); err != nil {
			return fmt.Errorf("failed to update time block %d: %w", blockID, err)
		}
		return s.engine.UpdateCompletionStatusTx(ctx, tx, block.DayID)
	})
}

// Delete removes a block. A block that came from a template leaves an
// exclusion behind so the same slot is not materialized again.
func (s *Service) Delete(ctx context.Context, userID, blockID int64) error {
	return s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repos := repository.New(tx)

		block, err := repos.TimeBlock.GetByIDForUser(ctx, blockID, userID)
		if err != nil {
			return fmt.Errorf("time block %d: %w", blockID, err)
		}

		if block.IsMaterialized() {
			day, err := repos.Day.GetByID(ctx, block.DayID)
			if err != nil {
				return fmt.Errorf("failed to load day %d: %w", block.DayID, err)
			}
			if err := repos.Exclusion.Create(ctx, *block.TemplateID, day.Date); err != nil {
				return fmt.Errorf("failed to record exclusion: %w", err)
			}
			log.Printf("[DEBUG] excluded template %d on %s", *block.TemplateID, models.DateKey(day.Date))
		}

		if err := repos.TimeBlock.Delete(ctx, blockID); err != nil {
			return fmt.Errorf("failed to delete time block %d: %w", blockID, err)
		}
		if err := repos.TimeBlock.CompactOrders(ctx, block.DayID); err != nil {
			return fmt.Errorf("failed to compact day %d: %w", block.DayID, err)
		}
		return s.engine.UpdateCompletionStatusTx(ctx, tx, block.DayID)
	})
}

// Reorder assigns orders 0..n-1 following blockIDs, which must list every
// block of the day exactly once.
func (s *Service) Reorder(ctx context.Context, userID, dayID int64, blockIDs []int64) error {
	return s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repos := repository.New(tx)

		if _, err := repos.Day.GetByIDForUser(ctx, dayID, userID); err != nil {
			return fmt.Errorf("day %d: %w", dayID, err)
		}
		blocks, err := repos.TimeBlock.ListByDay(ctx, dayID)
		if err != nil {
			return fmt.Errorf("failed to load time blocks: %w", err)
		}
		if err := checkPermutation(blocks, blockIDs); err != nil {
			return err
		}

		for i, id := range blockIDs {
			if err := repos.TimeBlock.SetOrder(ctx, id, i); err != nil {
				return fmt.Errorf("failed to set order of block %d: %w", id, err)
			}
		}
		return nil
	})
}

func checkPermutation(blocks []*models.TimeBlock, ids []int64) error {
	if len(blocks) != len(ids) {
		return fmt.Errorf("reorder needs all %d blocks of the day, got %d", len(blocks), len(ids))
	}
	want := make(map[int64]bool, len(blocks))
	for _, b := range blocks {
		want[b.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return fmt.Errorf("block %d is not on this day or is listed twice", id)
		}
		delete(want, id)
	}
	return nil
}

// Notes lists the block's notes in position order.
func (s *Service) Notes(ctx context.Context, userID, blockID int64) ([]*models.Note, error) {
	repos := repository.New(s.db.Pool)
	if _, err := repos.TimeBlock.GetByIDForUser(ctx, blockID, userID); err != nil {
		return nil, fmt.Errorf("time block %d: %w", blockID, err)
	}
	return repos.Note.ListByBlock(ctx, blockID)
}
