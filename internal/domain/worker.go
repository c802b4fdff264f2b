package domain

import "time"

// Worker shares its primary key with the owning User row (user_id).
type Worker struct {
	WorkerID  int64      `gorm:"column:worker_id;primaryKey;autoIncrement:false" json:"worker_id"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (Worker) TableName() string { return "worker" }

func (w *Worker) IsActive() bool { return w != nil && w.DeletedAt == nil }
