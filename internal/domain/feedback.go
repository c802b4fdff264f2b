package domain

import "time"

const (
	FeedbackStatusUnread = "unread"
	FeedbackStatusRead   = "read"
)

// Feedback is write-only from users; nothing in the core ever mutates a
// row beyond the unread->read transition an (out of scope) admin surface
// performs.
type Feedback struct {
	FeedbackID  int64     `gorm:"column:feedback_id;primaryKey" json:"feedback_id"`
	UserID      int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	DisplayName *string   `gorm:"column:display_name" json:"display_name,omitempty"`
	Handle      *string   `gorm:"column:handle" json:"handle,omitempty"`
	Message     string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	Status      string    `gorm:"column:status;not null;default:'unread'" json:"status"`
}

func (Feedback) TableName() string { return "feedback" }
