package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/dayline/internal/database"
)

// ErrNotFound is returned by lookups when the row does not exist or does not
// belong to the requesting user.
var ErrNotFound = errors.New("not found")

// Repositories bundles every repository over one Querier. Build it on the
// pool for standalone calls or on a pgx.Tx to share a transaction.
type Repositories struct {
	User      *UserRepository
	Day       *DayRepository
	TimeBlock *TimeBlockRepository
	Template  *TemplateRepository
	Exclusion *ExclusionRepository
	Note      *NoteRepository
	Event     *EventRepository
}

func New(q database.Querier) *Repositories {
	return &Repositories{
		User:      NewUserRepository(q),
		Day:       NewDayRepository(q),
		TimeBlock: NewTimeBlockRepository(q),
		Template:  NewTemplateRepository(q),
		Exclusion: NewExclusionRepository(q),
		Note:      NewNoteRepository(q),
		Event:     NewEventRepository(q),
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
