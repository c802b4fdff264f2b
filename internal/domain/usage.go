package domain

import "time"

// UsageTracking is a per-manager counter, mutated only through a single
// atomic UPDATE (spec §4.7) — never read-then-written by the application.
type UsageTracking struct {
	ManagerID      int64      `gorm:"column:manager_id;primaryKey;autoIncrement:false" json:"manager_id"`
	MessagesSent   int64      `gorm:"column:messages_sent;not null;default:0" json:"messages_sent"`
	IsBlocked      bool       `gorm:"column:is_blocked;not null;default:false" json:"is_blocked"`
	FirstMessageAt *time.Time `gorm:"column:first_message_at" json:"first_message_at,omitempty"`
	LastMessageAt  *time.Time `gorm:"column:last_message_at" json:"last_message_at,omitempty"`
}

func (UsageTracking) TableName() string { return "usage_tracking" }
