package task

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Task) (*domain.Task, error)
	// LockByID row-locks the task for the complete() transaction (spec
	// §4.5): task exists, connection still active, actor matches worker,
	// status still pending are all checked by the caller against this row.
	LockByID(ctx context.Context, tx *gorm.DB, taskID int64) (*domain.Task, error)
	Complete(ctx context.Context, tx *gorm.DB, taskID int64) error
	ListForManager(ctx context.Context, tx *gorm.DB, managerID int64, since time.Time) ([]*domain.Task, error)
	ListForWorker(ctx context.Context, tx *gorm.DB, workerID int64, since time.Time) ([]*domain.Task, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "task.Repo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, row *domain.Task) (*domain.Task, error) {
	if row == nil || row.ConnectionID == 0 {
		return nil, fmt.Errorf("missing connection_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	row.Status = domain.TaskStatusPending
	if err := txx.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) LockByID(ctx context.Context, tx *gorm.DB, taskID int64) (*domain.Task, error) {
	if taskID == 0 {
		return nil, fmt.Errorf("missing task_id")
	}
	if tx == nil {
		return nil, fmt.Errorf("LockByID requires tx")
	}
	var out domain.Task
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("task_id = ?", taskID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete is the atomic set of spec §4.5's complete(): status=completed,
// completed_at=NOW(), guarded by status=pending so two concurrent
// completions can't both report success.
func (r *repo) Complete(ctx context.Context, tx *gorm.DB, taskID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	result := txx.WithContext(ctx).
		Model(&domain.Task{}).
		Where("task_id = ? AND status = ?", taskID, domain.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.TaskStatusCompleted,
			"completed_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %d not pending", taskID)
	}
	return nil
}

func (r *repo) ListForManager(ctx context.Context, tx *gorm.DB, managerID int64, since time.Time) ([]*domain.Task, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Task
	err := txx.WithContext(ctx).
		Joins("JOIN connection ON connection.connection_id = task.connection_id").
		Where("connection.manager_id = ? AND (task.status = ? OR task.completed_at >= ?)",
			managerID, domain.TaskStatusPending, since).
		Order("task.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ListForWorker(ctx context.Context, tx *gorm.DB, workerID int64, since time.Time) ([]*domain.Task, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Task
	err := txx.WithContext(ctx).
		Joins("JOIN connection ON connection.connection_id = task.connection_id").
		Where("connection.worker_id = ? AND (task.status = ? OR task.completed_at >= ?)",
			workerID, domain.TaskStatusPending, since).
		Order("task.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
