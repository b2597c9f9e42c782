package models

// Task is a timed to-do entry owned by one user within one category.
// ScheduledTime is kept exactly as the user typed it.
type Task struct {
	ID            int64    `json:"id"`
	Owner         UserID   `json:"owner"`
	Category      Category `json:"category"`
	Description   string   `json:"description"`
	ScheduledTime string   `json:"scheduled_time"`
}
