// Package subscription implements spec §4.8: effective entitlement as a
// pure function of (status, ends_at, now). No mutation path lives here
// outside of Upsert, which only services/webhook calls.
package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	subscriptionrepo "github.com/bridgeos/bridgeos/internal/data/repos/subscription"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Service struct {
	db   *gorm.DB
	subs subscriptionrepo.Repo
	log  *logger.Logger
}

func NewService(db *gorm.DB, subs subscriptionrepo.Repo, log *logger.Logger) *Service {
	return &Service{db: db, subs: subs, log: log.With("service", "subscription.Service")}
}

// Effective implements spec §4.8's entitlement table (P5). A manager
// with no Subscription row at all is not entitled.
func (s *Service) Effective(ctx context.Context, managerID int64) (domain.Entitlement, error) {
	sub, err := s.subs.GetByManagerID(ctx, nil, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotEntitled, nil
		}
		return domain.NotEntitled, berrors.MapWrite("subscription.Effective", err)
	}
	return domain.Effective(sub, time.Now().UTC()), nil
}

// Upsert is the sole mutation path, called only by services/webhook
// (spec §4.8: "no internal code may mutate status directly").
func (s *Service) Upsert(ctx context.Context, row *domain.Subscription) (*domain.Subscription, error) {
	out, err := s.subs.Upsert(ctx, nil, row)
	if err != nil {
		return nil, berrors.MapWrite("subscription.Upsert", err)
	}
	return out, nil
}

func (s *Service) GetByManagerID(ctx context.Context, managerID int64) (*domain.Subscription, error) {
	row, err := s.subs.GetByManagerID(ctx, nil, managerID)
	if err != nil {
		return nil, berrors.MapWrite("subscription.GetByManagerID", err)
	}
	return row, nil
}
