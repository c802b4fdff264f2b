package manager

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Manager) (*domain.Manager, error)
	GetByID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Manager, error)
	GetActiveByID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Manager, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, managerID int64) error
	CodeInUse(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	GetActiveByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.Manager, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "manager.Repo")}
}

// Create implements spec §4.2's create_manager: idempotent, re-activating
// a soft-deleted row rather than erroring. A collision on the active-code
// partial unique index is translated to CodeCodeCollision here, via
// pkg/errors.MapManagerCodeConflict.
func (r *repo) Create(ctx context.Context, tx *gorm.DB, row *domain.Manager) (*domain.Manager, error) {
	if row == nil || row.ManagerID == 0 {
		return nil, fmt.Errorf("missing manager_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	err := txx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "manager_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"code":       row.Code,
				"industry":   row.Industry,
				"deleted_at": nil,
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, berrors.MapManagerCodeConflict("manager.Create", err)
	}
	return row, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Manager, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Manager
	if err := txx.WithContext(ctx).Unscoped().Where("manager_id = ?", managerID).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetActiveByID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Manager, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Manager
	if err := txx.WithContext(ctx).
		Where("manager_id = ? AND deleted_at IS NULL", managerID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SoftDelete sets deleted_at=NOW(); the caller (internal/services/identity)
// is responsible for disconnecting active connections in the same
// transaction per spec §4.2.
func (r *repo) SoftDelete(ctx context.Context, tx *gorm.DB, managerID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(ctx).
		Model(&domain.Manager{}).
		Where("manager_id = ? AND deleted_at IS NULL", managerID).
		Update("deleted_at", gorm.Expr("now()")).Error
}

// GetActiveByCode resolves an invitation code (spec §6's BRIDGE-DDDDD) to
// the owning Manager, for redemption via internal/bot.
func (r *repo) GetActiveByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.Manager, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Manager
	if err := txx.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) CodeInUse(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(ctx).
		Model(&domain.Manager{}).
		Where("code = ? AND deleted_at IS NULL", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
