package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/hray3182/dayline/internal/models"
)

// UserLister yields the users that own at least one active template.
type UserLister interface {
	ListUserIDsWithActive(ctx context.Context) ([]int64, error)
}

// Materializer fills a user's days from their templates.
type Materializer interface {
	Materialize(ctx context.Context, userID int64, start, end time.Time) error
}

// Scheduler runs the materialization sweep on a cron schedule, and on demand
// via Notify.
type Scheduler struct {
	users        UserLister
	materializer Materializer
	schedule     cron.Schedule
	spec         string
	horizonDays  int
	startDelay   time.Duration
	now          func() time.Time
	notifyCh     chan struct{}
}

func New(users UserLister, materializer Materializer, spec string, horizonDays int) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid materialize schedule %q: %w", spec, err)
	}
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon must be at least 1 day, got %d", horizonDays)
	}
	return &Scheduler{
		users:        users,
		materializer: materializer,
		schedule:     schedule,
		spec:         spec,
		horizonDays:  horizonDays,
		startDelay:   2 * time.Second,
		now:          time.Now,
		notifyCh:     make(chan struct{}, 1),
	}, nil
}

// Notify triggers an immediate sweep. Non-blocking if a sweep is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// Next reports when the cron schedule fires after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start blocks until ctx is cancelled. Cron ticks only queue a sweep, so a
// slow sweep never overlaps the next one.
func (s *Scheduler) Start(ctx context.Context) {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(s.Notify))
	c.Start()
	defer c.Stop()
	log.Printf("[INFO] Scheduler started (schedule %q, horizon %d days)", s.spec, s.horizonDays)

	// Wait a bit for migrations to complete before first sweep
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.startDelay):
	}

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Scheduler stopped")
			return
		case <-s.notifyCh:
			s.Sweep(ctx)
		}
	}
}

// Window returns the inclusive date range a sweep starting at now covers.
func (s *Scheduler) Window(now time.Time) (time.Time, time.Time) {
	start := models.NormalizeDate(now)
	return start, models.AddDays(start, s.horizonDays-1)
}

// Sweep materializes the horizon for every user with an active template.
// A failure for one user is logged and does not stop the rest.
func (s *Scheduler) Sweep(ctx context.Context) {
	run := uuid.NewString()
	start, end := s.Window(s.now())

	userIDs, err := s.users.ListUserIDsWithActive(ctx)
	if err != nil {
		log.Printf("[ERROR] sweep %s: failed to list users: %v", run, err)
		return
	}

	failed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.materializer.Materialize(ctx, userID, start, end); err != nil {
			failed++
			log.Printf("[WARN] sweep %s: user %d: %v", run, userID, err)
		}
	}
	log.Printf("[INFO] sweep %s: %s..%s for %d users, %d failed",
		run, models.DateKey(start), models.DateKey(end), len(userIDs), failed)
}
