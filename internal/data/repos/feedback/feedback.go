package feedback

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Feedback) (*domain.Feedback, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "feedback.Repo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, row *domain.Feedback) (*domain.Feedback, error) {
	if row == nil || row.UserID == 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	row.Status = domain.FeedbackStatusUnread
	if err := txx.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
