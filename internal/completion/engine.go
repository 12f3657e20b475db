package completion

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
)

// Engine keeps Day.IsCompleted and the user's streak fields in step with
// time-block completion. Those fields are caches; only the engine writes
// them.
type Engine struct {
	db  *database.DB
	now func() time.Time
}

func New(db *database.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// WithClock returns a copy of the engine that reads "today" from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{db: e.db, now: now}
}

// UpdateCompletionStatus recomputes the day in its own transaction.
func (e *Engine) UpdateCompletionStatus(ctx context.Context, dayID int64) error {
	return e.db.RunInTx(ctx, func(tx pgx.Tx) error {
		return e.UpdateCompletionStatusTx(ctx, tx, dayID)
	})
}

// UpdateCompletionStatusTx recomputes the day's completion flag through q,
// normally the caller's transaction, and recomputes the owner's streak only
// if the flag changed. A day without time blocks is left untouched.
func (e *Engine) UpdateCompletionStatusTx(ctx context.Context, q database.Querier, dayID int64) error {
	repos := repository.New(q)

	day, err := repos.Day.GetForUpdate(ctx, dayID)
	if err != nil {
		return fmt.Errorf("failed to load day %d: %w", dayID, err)
	}

	blocks, err := repos.TimeBlock.ListByDay(ctx, dayID)
	if err != nil {
		return fmt.Errorf("failed to load time blocks for day %d: %w", dayID, err)
	}
	if len(blocks) == 0 {
		return nil
	}

	allCompleted := true
	for _, b := range blocks {
		if !b.IsCompleted {
			allCompleted = false
			break
		}
	}
	if allCompleted == day.IsCompleted {
		return nil
	}

	if err := repos.Day.SetCompleted(ctx, dayID, allCompleted); err != nil {
		return fmt.Errorf("failed to update day %d: %w", dayID, err)
	}
	log.Printf("[DEBUG] day %d (user %d, %s) completed=%v", dayID, day.UserID, models.DateKey(day.Date), allCompleted)

	return e.recomputeStreak(ctx, repos, day.UserID)
}

func (e *Engine) recomputeStreak(ctx context.Context, repos *repository.Repositories, userID int64) error {
	user, err := repos.User.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	today := models.NormalizeDate(e.now())
	days, err := repos.Day.ListActiveSince(ctx, userID, models.AddDays(today, -LookbackDays))
	if err != nil {
		return fmt.Errorf("failed to load active days for user %d: %w", userID, err)
	}

	s := ComputeStreak(days, today)

	// Longest-ever never regresses, even when old history leaves the window.
	longest := user.LongestStreak
	if s.Longest > longest {
		longest = s.Longest
	}

	if err := repos.User.UpdateStreak(ctx, userID, s.Current, longest, s.LastCompleted); err != nil {
		return fmt.Errorf("failed to update streak for user %d: %w", userID, err)
	}
	log.Printf("[DEBUG] user %d streak current=%d longest=%d", userID, s.Current, longest)
	return nil
}
