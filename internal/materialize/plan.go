package materialize

import (
	"time"

	"github.com/hray3182/dayline/internal/models"
)

// task is one (template, date) slot to create.
type task struct {
	template *models.Template
	date     time.Time
}

// plan walks [start, end] day by day and returns the slots that should
// exist but are neither materialized nor excluded. Tasks come out ordered by
// date, then by the templates' order.
func plan(templates []*models.Template, existing, excluded map[string]bool, start, end time.Time) []task {
	var tasks []task
	start = models.NormalizeDate(start)
	end = models.NormalizeDate(end)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		weekday := models.ISOWeekday(day)
		for _, t := range templates {
			if !t.RunsOn(weekday) || !t.ActiveOn(day) {
				continue
			}
			key := models.OccurrenceKey{TemplateID: t.ID, Date: day}.Key()
			if existing[key] || excluded[key] {
				continue
			}
			tasks = append(tasks, task{template: t, date: day})
		}
	}
	return tasks
}

func keySet(keys []models.OccurrenceKey) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k.Key()] = true
	}
	return set
}
