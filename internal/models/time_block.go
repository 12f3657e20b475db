package models

type TimeBlock struct {
	ID          int64  `json:"id"`
	DayID       int64  `json:"day_id"`
	TemplateID  *int64 `json:"template_id"`
	Order       int    `json:"order"`
	IsCompleted bool   `json:"is_completed"`
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`   // HH:MM
	Name        string `json:"name"`
	Color       string `json:"color"`
}

// IsMaterialized returns true if the block was created from a template
func (b *TimeBlock) IsMaterialized() bool {
	return b.TemplateID != nil
}
