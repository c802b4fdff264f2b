package webhookevent

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	// RecordIfNew inserts the ledger row for the idempotency tuple
	// (manager_id, event_kind, external_id, event_timestamp); returns
	// (recorded=false, nil) if the tuple was already present, implementing
	// spec §4.9's "replaying yields the same end state" / P6.
	RecordIfNew(ctx context.Context, tx *gorm.DB, row *domain.WebhookEvent) (recorded bool, err error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "webhookevent.Repo")}
}

func (r *repo) RecordIfNew(ctx context.Context, tx *gorm.DB, row *domain.WebhookEvent) (bool, error) {
	if row == nil {
		return false, errors.New("missing webhook event")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	result := txx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
