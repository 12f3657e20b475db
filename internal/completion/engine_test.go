package completion_test

import (
	"context"
	"testing"
	"time"

	"github.com/hray3182/dayline/internal/completion"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
	"github.com/hray3182/dayline/internal/testutil"
	"github.com/hray3182/dayline/internal/timeblock"
)

func TestStreakPersistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	engine := completion.New(db).WithClock(testutil.Clock(today))
	blocks := timeblock.New(db, engine)
	users := repository.NewUserRepository(db.Pool)
	userID := testutil.CreateTestUser(t, db)

	byDate := make(map[string]int64)
	for back := 3; back >= 1; back-- {
		date := models.AddDays(today, -back)
		blk, err := blocks.Create(ctx, userID, date, timeblock.Input{Name: "Run", StartTime: "06:00", EndTime: "07:00"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		byDate[models.DateKey(date)] = blk.ID
	}
	// Today is planned but still open.
	if _, err := blocks.Create(ctx, userID, today, timeblock.Input{Name: "Run", StartTime: "06:00", EndTime: "07:00"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, key := range []string{"2024-06-07", "2024-06-08", "2024-06-09"} {
		if err := blocks.SetCompleted(ctx, userID, byDate[key], true); err != nil {
			t.Fatalf("SetCompleted %s failed: %v", key, err)
		}
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if user.CurrentStreak != 3 || user.LongestStreak != 3 {
		t.Errorf("streak = %d/%d, want 3/3", user.CurrentStreak, user.LongestStreak)
	}
	if user.LastCompletedDate == nil || models.DateKey(*user.LastCompletedDate) != "2024-06-09" {
		t.Errorf("LastCompletedDate = %v, want 2024-06-09", user.LastCompletedDate)
	}

	if err := blocks.SetCompleted(ctx, userID, byDate["2024-06-08"], false); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}

	user, err = users.GetByID(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if user.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1", user.CurrentStreak)
	}
	if user.LongestStreak != 3 {
		t.Errorf("longest streak = %d, want it to stay 3", user.LongestStreak)
	}
}

func TestUpdateCompletionStatusLeavesEmptyDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, db)
	day, err := repository.NewDayRepository(db.Pool).Upsert(ctx, userID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if err := completion.New(db).UpdateCompletionStatus(ctx, day.ID); err != nil {
		t.Fatalf("UpdateCompletionStatus failed: %v", err)
	}
	got, err := repository.NewDayRepository(db.Pool).GetByID(ctx, day.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsCompleted {
		t.Error("a day without blocks must not become complete")
	}
}
