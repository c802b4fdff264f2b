package worker

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Worker) (*domain.Worker, error)
	GetActiveByID(ctx context.Context, tx *gorm.DB, workerID int64) (*domain.Worker, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, workerID int64) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "worker.Repo")}
}

// Create implements spec §4.2's create_worker: idempotent re-activation.
func (r *repo) Create(ctx context.Context, tx *gorm.DB, row *domain.Worker) (*domain.Worker, error) {
	if row == nil || row.WorkerID == 0 {
		return nil, fmt.Errorf("missing worker_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	err := txx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worker_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": nil}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetActiveByID(ctx context.Context, tx *gorm.DB, workerID int64) (*domain.Worker, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Worker
	if err := txx.WithContext(ctx).
		Where("worker_id = ? AND deleted_at IS NULL", workerID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) SoftDelete(ctx context.Context, tx *gorm.DB, workerID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(ctx).
		Model(&domain.Worker{}).
		Where("worker_id = ? AND deleted_at IS NULL", workerID).
		Update("deleted_at", gorm.Expr("now()")).Error
}
