package domain

import "time"

// User is created on first contact (/start) and keyed by the chat
// platform's own 64-bit user id — never a surrogate key. It is never
// hard-deleted while referenced by a Manager, Worker, Message or Task row.
type User struct {
	UserID      int64   `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	DisplayName string  `gorm:"column:display_name;not null" json:"display_name"`
	UILanguage  string  `gorm:"column:ui_language;not null;default:''" json:"ui_language"`
	Gender      *string `gorm:"column:gender" json:"gender,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "bridge_user" }
