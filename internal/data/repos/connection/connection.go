package connection

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// Repo is the engineered core of spec §4.3: the database's two partial
// unique indexes are the only mutex. Bind issues a plain INSERT and lets
// a unique-constraint violation arrive as a typed error; no row is ever
// locked or pre-checked in application code before the insert.
type Repo interface {
	Bind(ctx context.Context, tx *gorm.DB, row *domain.Connection) (*domain.Connection, error)
	Unbind(ctx context.Context, tx *gorm.DB, connectionID int64) (bool, error)
	GetActiveForManagerSlot(ctx context.Context, tx *gorm.DB, managerID int64, botSlot int) (*domain.Connection, error)
	GetActiveForWorker(ctx context.Context, tx *gorm.DB, workerID int64) (*domain.Connection, error)
	ListActiveForManager(ctx context.Context, tx *gorm.DB, managerID int64) ([]*domain.Connection, error)
	GetByID(ctx context.Context, tx *gorm.DB, connectionID int64) (*domain.Connection, error)
	UnbindAllForManager(ctx context.Context, tx *gorm.DB, managerID int64) error
	UnbindAllForWorker(ctx context.Context, tx *gorm.DB, workerID int64) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "connection.Repo")}
}

func (r *repo) Bind(ctx context.Context, tx *gorm.DB, row *domain.Connection) (*domain.Connection, error) {
	if row == nil || row.ManagerID == 0 || row.WorkerID == 0 {
		return nil, fmt.Errorf("missing manager_id or worker_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	row.Status = domain.ConnectionStatusActive
	if err := txx.WithContext(ctx).Create(row).Error; err != nil {
		return nil, berrors.MapConnectionConflict("connection.Bind", err)
	}
	return row, nil
}

// Unbind is the idempotent UPDATE of spec §4.3: repeated calls return
// (false, nil) rather than an error — the caller maps that to
// AlreadyDisconnected.
func (r *repo) Unbind(ctx context.Context, tx *gorm.DB, connectionID int64) (bool, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	result := txx.WithContext(ctx).
		Model(&domain.Connection{}).
		Where("connection_id = ? AND status = ?", connectionID, domain.ConnectionStatusActive).
		Updates(map[string]interface{}{
			"status":          domain.ConnectionStatusDisconnected,
			"disconnected_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return false, berrors.MapWrite("connection.Unbind", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) GetActiveForManagerSlot(ctx context.Context, tx *gorm.DB, managerID int64, botSlot int) (*domain.Connection, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Connection
	err := txx.WithContext(ctx).
		Where("manager_id = ? AND bot_slot = ? AND status = ?", managerID, botSlot, domain.ConnectionStatusActive).
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetActiveForWorker(ctx context.Context, tx *gorm.DB, workerID int64) (*domain.Connection, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Connection
	err := txx.WithContext(ctx).
		Where("worker_id = ? AND status = ?", workerID, domain.ConnectionStatusActive).
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActiveForManager returns up to 5 rows — the bot-slot ceiling named
// throughout spec §3/§6.
func (r *repo) ListActiveForManager(ctx context.Context, tx *gorm.DB, managerID int64) ([]*domain.Connection, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Connection
	err := txx.WithContext(ctx).
		Where("manager_id = ? AND status = ?", managerID, domain.ConnectionStatusActive).
		Order("bot_slot ASC").
		Limit(5).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, connectionID int64) (*domain.Connection, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Connection
	if err := txx.WithContext(ctx).Where("connection_id = ?", connectionID).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// UnbindAllForManager is used by identity.SoftDeleteManager in the same
// transaction as the Manager soft-delete (spec §4.2).
func (r *repo) UnbindAllForManager(ctx context.Context, tx *gorm.DB, managerID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(ctx).
		Model(&domain.Connection{}).
		Where("manager_id = ? AND status = ?", managerID, domain.ConnectionStatusActive).
		Updates(map[string]interface{}{
			"status":          domain.ConnectionStatusDisconnected,
			"disconnected_at": gorm.Expr("now()"),
		}).Error
}

func (r *repo) UnbindAllForWorker(ctx context.Context, tx *gorm.DB, workerID int64) error {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(ctx).
		Model(&domain.Connection{}).
		Where("worker_id = ? AND status = ?", workerID, domain.ConnectionStatusActive).
		Updates(map[string]interface{}{
			"status":          domain.ConnectionStatusDisconnected,
			"disconnected_at": gorm.Expr("now()"),
		}).Error
}
