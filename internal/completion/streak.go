package completion

import (
	"sort"
	"time"

	"github.com/hray3182/dayline/internal/models"
)

// LookbackDays bounds how much history the streak recompute reads.
const LookbackDays = 365

// Streak is the result of a recompute over a user's active days. Longest
// covers only the days given; callers merge it with the stored value.
type Streak struct {
	Current       int
	Longest       int
	LastCompleted *time.Time
}

// ComputeStreak derives streak values from active days in any order.
//
// The current streak walks back from the most recent active day. If that day
// is today and still incomplete it is skipped; any other incomplete day ends
// the walk. The longest streak is the longest run of completed active days in
// chronological order.
func ComputeStreak(days []models.ActiveDay, today time.Time) Streak {
	days = dedupeDescending(days)
	today = models.NormalizeDate(today)

	var s Streak
	if len(days) == 0 {
		return s
	}

	for _, d := range days {
		if d.IsCompleted {
			last := d.Date
			s.LastCompleted = &last
			break
		}
	}

	start := 0
	mostRecent := days[0]
	if mostRecent.Date.Equal(today) && !mostRecent.IsCompleted {
		start = 1
	}
	for _, d := range days[start:] {
		if !d.IsCompleted {
			break
		}
		s.Current++
	}

	run := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].IsCompleted {
			run = 0
			continue
		}
		run++
		if run > s.Longest {
			s.Longest = run
		}
	}

	return s
}

// dedupeDescending normalizes dates, sorts most recent first and keeps the
// first entry seen for each UTC day.
func dedupeDescending(in []models.ActiveDay) []models.ActiveDay {
	days := make([]models.ActiveDay, len(in))
	for i, d := range in {
		days[i] = models.ActiveDay{Date: models.NormalizeDate(d.Date), IsCompleted: d.IsCompleted}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	out := days[:0]
	var prev int64
	for i, d := range days {
		n := models.DayNumber(d.Date)
		if i > 0 && n == prev {
			continue
		}
		prev = n
		out = append(out, d)
	}
	return out
}
