package user

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
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID int64) (*domain.User, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "user.Repo")}
}

// Upsert implements spec §4.2's upsert_user: insert-or-update by primary
// key, always refreshing updated_at.
func (r *repo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.User) (*domain.User, error) {
	if row == nil || row.UserID == 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	row.UpdatedAt = time.Now().UTC()
	err := txx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "ui_language", "gender", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, userID int64) (*domain.User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.User
	if err := txx.WithContext(ctx).Where("user_id = ?", userID).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
