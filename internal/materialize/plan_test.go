package materialize

import (
	"testing"
	"time"

	"github.com/hray3182/dayline/internal/models"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestPlan(t *testing.T) {
	cutoff := d(2024, 1, 3)
	weekdays := &models.Template{ID: 1, Name: "Standup", DaysOfWeek: []int{1, 2, 3, 4, 5}}
	monday := &models.Template{ID: 2, Name: "Review", DaysOfWeek: []int{1}}
	ending := &models.Template{ID: 3, Name: "Course", DaysOfWeek: []int{1, 2, 3, 4, 5, 6, 7}, ActiveUntil: &cutoff}

	// 2024-01-01 is a Monday.
	start, end := d(2024, 1, 1), d(2024, 1, 7)

	t.Run("all missing", func(t *testing.T) {
		tasks := plan([]*models.Template{weekdays, monday, ending}, nil, nil, start, end)

		counts := map[int64]int{}
		for _, tk := range tasks {
			counts[tk.template.ID]++
		}
		if counts[1] != 5 {
			t.Errorf("weekday template: expected 5 tasks, got %d", counts[1])
		}
		if counts[2] != 1 {
			t.Errorf("monday template: expected 1 task, got %d", counts[2])
		}
		if counts[3] != 3 {
			t.Errorf("template ending Jan 3: expected 3 tasks, got %d", counts[3])
		}

		for i := 1; i < len(tasks); i++ {
			if tasks[i].date.Before(tasks[i-1].date) {
				t.Fatalf("tasks not in date order at %d", i)
			}
		}
	})

	t.Run("existing and excluded are skipped", func(t *testing.T) {
		existing := keySet([]models.OccurrenceKey{
			{TemplateID: 1, Date: d(2024, 1, 1)},
			{TemplateID: 1, Date: d(2024, 1, 2)},
		})
		excluded := keySet([]models.OccurrenceKey{
			{TemplateID: 1, Date: d(2024, 1, 3)},
			{TemplateID: 2, Date: d(2024, 1, 1)},
		})
		tasks := plan([]*models.Template{weekdays, monday}, existing, excluded, start, end)

		var got []string
		for _, tk := range tasks {
			got = append(got, models.OccurrenceKey{TemplateID: tk.template.ID, Date: tk.date}.Key())
		}
		want := []string{"1|2024-01-04", "1|2024-01-05"}
		if len(got) != len(want) {
			t.Fatalf("Expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("task %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("single day window", func(t *testing.T) {
		tasks := plan([]*models.Template{weekdays}, nil, nil, d(2024, 1, 6), d(2024, 1, 6))
		if len(tasks) != 0 {
			t.Errorf("Saturday should not schedule weekday template, got %d tasks", len(tasks))
		}
	})
}

func TestTemplateActiveOn(t *testing.T) {
	cutoff := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	tmpl := &models.Template{ActiveUntil: &cutoff}

	if !tmpl.ActiveOn(d(2024, 1, 3)) {
		t.Error("template should be active on its cutoff date")
	}
	if tmpl.ActiveOn(d(2024, 1, 4)) {
		t.Error("template should be inactive after its cutoff date")
	}
}
