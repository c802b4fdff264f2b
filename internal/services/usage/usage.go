// Package usage implements spec §4.7: the manager-scoped message counter.
package usage

import (
	"context"

	"gorm.io/gorm"

	usagerepo "github.com/bridgeos/bridgeos/internal/data/repos/usage"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Service struct {
	db    *gorm.DB
	usage usagerepo.Repo
	log   *logger.Logger
}

func NewService(db *gorm.DB, usage usagerepo.Repo, log *logger.Logger) *Service {
	return &Service{db: db, usage: usage, log: log.With("service", "usage.Service")}
}

// Get implements spec §4.7's get(): creates a zeroed row on first read.
func (s *Service) Get(ctx context.Context, managerID int64) (*domain.UsageTracking, error) {
	row, err := s.usage.Get(ctx, nil, managerID)
	if err != nil {
		return nil, berrors.MapWrite("usage.Get", err)
	}
	return row, nil
}

// Increment implements spec §4.7's increment(): single atomic UPDATE.
func (s *Service) Increment(ctx context.Context, managerID, freeLimit int64) (newCount int64, nowBlocked bool, err error) {
	row, err := s.usage.Increment(ctx, nil, managerID, freeLimit)
	if err != nil {
		return 0, false, berrors.MapWrite("usage.Increment", err)
	}
	return row.MessagesSent, row.IsBlocked, nil
}

// Reset implements spec §4.7's reset().
func (s *Service) Reset(ctx context.Context, managerID int64) error {
	if err := s.usage.Reset(ctx, nil, managerID); err != nil {
		return berrors.MapWrite("usage.Reset", err)
	}
	return nil
}
