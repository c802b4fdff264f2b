package message

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.Message) (*domain.Message, error)
	// LastN implements the translation-context assembler (spec §4.6):
	// at most k rows, sent_at ASC, empty slice when none exist.
	LastN(ctx context.Context, tx *gorm.DB, connectionID int64, k int) ([]*domain.Message, error)
	// ForConnectionsWindow implements spec §4.10's daily extraction fetch.
	ForConnectionsWindow(ctx context.Context, tx *gorm.DB, connectionIDs []int64, since time.Time) ([]*domain.Message, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "message.Repo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, row *domain.Message) (*domain.Message, error) {
	if row == nil || row.ConnectionID == 0 {
		return nil, fmt.Errorf("missing connection_id")
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) LastN(ctx context.Context, tx *gorm.DB, connectionID int64, k int) ([]*domain.Message, error) {
	if connectionID == 0 {
		return nil, fmt.Errorf("missing connection_id")
	}
	if k <= 0 {
		k = 6
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var desc []*domain.Message
	if err := txx.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("sent_at DESC").
		Limit(k).
		Find(&desc).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Message, len(desc))
	for i, m := range desc {
		out[len(desc)-1-i] = m
	}
	return out, nil
}

func (r *repo) ForConnectionsWindow(ctx context.Context, tx *gorm.DB, connectionIDs []int64, since time.Time) ([]*domain.Message, error) {
	if len(connectionIDs) == 0 {
		return []*domain.Message{}, nil
	}
	txx := tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(ctx).
		Where("connection_id IN ? AND sent_at >= ?", connectionIDs, since).
		Order("sent_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
