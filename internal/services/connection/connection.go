// Package connection implements spec §4.3, the engineered core: binding
// and unbinding manager<->worker pairs with the database's partial
// unique indexes as the sole concurrency primitive.
package connection

import (
	"context"

	"gorm.io/gorm"

	connectionrepo "github.com/bridgeos/bridgeos/internal/data/repos/connection"
	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	workerrepo "github.com/bridgeos/bridgeos/internal/data/repos/worker"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

const MaxBotSlot = 5

type Service struct {
	db       *gorm.DB
	conns    connectionrepo.Repo
	managers managerrepo.Repo
	workers  workerrepo.Repo
	log      *logger.Logger
}

func NewService(db *gorm.DB, conns connectionrepo.Repo, managers managerrepo.Repo, workers workerrepo.Repo, log *logger.Logger) *Service {
	return &Service{db: db, conns: conns, managers: managers, workers: workers, log: log.With("service", "connection.Service")}
}

// Bind implements spec §4.3's bind(): no application-level mutex is used
// or permitted — the unique-constraint violation IS the concurrency
// resolution, translated by the repo layer into SlotOccupied or
// WorkerAlreadyConnected.
func (s *Service) Bind(ctx context.Context, managerID, workerID int64, botSlot int) (*domain.Connection, error) {
	if botSlot < 1 || botSlot > MaxBotSlot {
		return nil, berrors.New(berrors.CodeInvalidSlot, "connection.Bind", "bot_slot out of range")
	}

	var out *domain.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.managers.GetActiveByID(ctx, tx, managerID); err != nil {
			return berrors.Wrap(berrors.CodeManagerGone, "connection.Bind", err)
		}
		if _, err := s.workers.GetActiveByID(ctx, tx, workerID); err != nil {
			return berrors.Wrap(berrors.CodeWorkerGone, "connection.Bind", err)
		}
		row, err := s.conns.Bind(ctx, tx, &domain.Connection{
			ManagerID: managerID,
			WorkerID:  workerID,
			BotSlot:   botSlot,
		})
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unbind implements spec §4.3's unbind(): idempotent, repeated calls
// report AlreadyDisconnected rather than an error.
func (s *Service) Unbind(ctx context.Context, connectionID int64) error {
	changed, err := s.conns.Unbind(ctx, nil, connectionID)
	if err != nil {
		return err
	}
	if !changed {
		return berrors.New(berrors.CodeAlreadyDisconnected, "connection.Unbind", "connection already disconnected")
	}
	return nil
}

func (s *Service) GetActiveForManagerSlot(ctx context.Context, managerID int64, botSlot int) (*domain.Connection, error) {
	row, err := s.conns.GetActiveForManagerSlot(ctx, nil, managerID, botSlot)
	if err != nil {
		return nil, berrors.Wrap(berrors.CodeNotConnected, "connection.GetActiveForManagerSlot", err)
	}
	return row, nil
}

func (s *Service) GetActiveForWorker(ctx context.Context, workerID int64) (*domain.Connection, error) {
	row, err := s.conns.GetActiveForWorker(ctx, nil, workerID)
	if err != nil {
		return nil, berrors.Wrap(berrors.CodeNotConnected, "connection.GetActiveForWorker", err)
	}
	return row, nil
}

// ListActiveForManager implements spec §4.3's list_active_for_manager,
// capped at MaxBotSlot.
func (s *Service) ListActiveForManager(ctx context.Context, managerID int64) ([]*domain.Connection, error) {
	return s.conns.ListActiveForManager(ctx, nil, managerID)
}
