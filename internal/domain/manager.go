package domain

import "time"

// Manager shares its primary key with the owning User row (user_id). Code
// is the BRIDGE-DDDDD invitation token; it is unique only among rows with
// DeletedAt IS NULL — enforced by idx_manager_code_active, a partial
// unique index created in data/db/migrate.go (gorm's struct tag alone
// cannot express the WHERE clause).
type Manager struct {
	ManagerID int64      `gorm:"column:manager_id;primaryKey;autoIncrement:false" json:"manager_id"`
	Code      string     `gorm:"column:code;not null" json:"code"`
	Industry  string     `gorm:"column:industry;not null" json:"industry"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (Manager) TableName() string { return "manager" }

func (m *Manager) IsActive() bool { return m != nil && m.DeletedAt == nil }
