package testutil

import (
	"context"
	"encoding/binary"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
)

// TestDBEnv names the variable holding the test database connection string.
const TestDBEnv = "DAYLINE_TEST_DATABASE_URI"

// SetupTestDB connects to the test database and applies migrations. The test
// is skipped when no database is configured.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	uri := os.Getenv(TestDBEnv)
	if uri == "" {
		t.Skipf("%s not set", TestDBEnv)
	}

	ctx := context.Background()
	db, err := database.New(ctx, uri)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// NewUserID returns a positive id that no other test run will pick, so tests
// can share one database without cleaning it.
func NewUserID() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint64(u[:8]) >> 1)
}

// CreateTestUser inserts a fresh user.
func CreateTestUser(t *testing.T, db *database.DB) int64 {
	t.Helper()

	userID := NewUserID()
	if _, err := repository.NewUserRepository(db.Pool).GetOrCreate(context.Background(), userID, "test-"+uuid.NewString()[:8]); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

// CreateTestTemplate inserts an active template for the user running on the
// given ISO weekdays.
func CreateTestTemplate(t *testing.T, db *database.DB, userID int64, name string, daysOfWeek []int, notes ...string) *models.Template {
	t.Helper()

	tmpl := &models.Template{
		UserID:     userID,
		Name:       name,
		StartTime:  "09:00",
		EndTime:    "10:00",
		Color:      "#3366ff",
		DaysOfWeek: daysOfWeek,
		IsActive:   true,
		Notes:      notes,
	}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("Invalid test template: %v", err)
	}
	if err := repository.NewTemplateRepository(db.Pool).Create(context.Background(), tmpl); err != nil {
		t.Fatalf("Failed to create test template: %v", err)
	}
	return tmpl
}

// AllWeek lists every ISO weekday.
var AllWeek = []int{1, 2, 3, 4, 5, 6, 7}

// BlockRow is a flattened view of one time block with its day.
type BlockRow struct {
	ID          int64
	Date        string
	Order       int
	IsCompleted bool
	TemplateID  *int64
}

// ListBlocks returns all of the user's time blocks ordered by date and order.
func ListBlocks(t *testing.T, db *database.DB, userID int64) []BlockRow {
	t.Helper()

	rows, err := db.Pool.Query(context.Background(),
		`SELECT tb.id, to_char(d.date, 'YYYY-MM-DD'), tb."order", tb.is_completed, tb.template_id
		 FROM time_block tb JOIN day d ON d.id = tb.day_id
		 WHERE d.user_id = $1
		 ORDER BY d.date, tb."order"`,
		userID,
	)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	defer rows.Close()

	var out []BlockRow
	for rows.Next() {
		var b BlockRow
		if err := rows.Scan(&b.ID, &b.Date, &b.Order, &b.IsCompleted, &b.TemplateID); err != nil {
			t.Fatalf("Failed to scan block: %v", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	return out
}

// CountNotes returns how many notes hang off the user's time blocks.
func CountNotes(t *testing.T, db *database.DB, userID int64) int {
	t.Helper()

	var n int
	err := db.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM note WHERE user_id = $1 AND time_block_id IS NOT NULL`,
		userID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	return n
}

// Clock returns a fixed clock reading noon UTC on date.
func Clock(date time.Time) func() time.Time {
	noon := models.NormalizeDate(date).Add(12 * time.Hour)
	return func() time.Time { return noon }
}
