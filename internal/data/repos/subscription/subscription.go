package subscription

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	GetByManagerID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Subscription, error)
	// Upsert is the only mutation path for Subscription (spec §4.8: "no
	// internal code may mutate status directly" outside the webhook
	// receiver) — UPSERT keyed on manager_id, per §4.9's idempotency
	// contract.
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.Subscription) (*domain.Subscription, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "subscription.Repo")}
}

func (r *repo) GetByManagerID(ctx context.Context, tx *gorm.DB, managerID int64) (*domain.Subscription, error) {
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Subscription
	if err := txx.WithContext(ctx).Where("manager_id = ?", managerID).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.Subscription) (*domain.Subscription, error) {
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
			DoUpdates: clause.AssignmentColumns([]string{
				"external_id", "status", "customer_portal_url",
				"renews_at", "ends_at", "metadata", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}
