package domain

import "time"

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task transitions pending -> completed exactly once (P3); the reverse is
// forbidden and re-completing is idempotent at the service layer.
type Task struct {
	TaskID                int64      `gorm:"column:task_id;primaryKey" json:"task_id"`
	ConnectionID           int64      `gorm:"column:connection_id;not null;index" json:"connection_id"`
	Description            string     `gorm:"column:description;type:text;not null" json:"description"`
	DescriptionTranslated  *string    `gorm:"column:description_translated;type:text" json:"description_translated,omitempty"`
	Status                 string     `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedAt              time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	CompletedAt            *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Task) TableName() string { return "task" }

func (t *Task) IsPending() bool { return t != nil && t.Status == TaskStatusPending }
