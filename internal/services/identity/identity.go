// Package identity implements spec §4.2: user upsert, manager/worker
// lifecycle, and the single-active-role invariant.
package identity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	connectionrepo "github.com/bridgeos/bridgeos/internal/data/repos/connection"
	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	userrepo "github.com/bridgeos/bridgeos/internal/data/repos/user"
	workerrepo "github.com/bridgeos/bridgeos/internal/data/repos/worker"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
	RoleNone    Role = "none"
)

type Service struct {
	db         *gorm.DB
	users      userrepo.Repo
	managers   managerrepo.Repo
	workers    workerrepo.Repo
	connection connectionrepo.Repo
	log        *logger.Logger
}

func NewService(db *gorm.DB, users userrepo.Repo, managers managerrepo.Repo, workers workerrepo.Repo, connection connectionrepo.Repo, log *logger.Logger) *Service {
	return &Service{
		db:         db,
		users:      users,
		managers:   managers,
		workers:    workers,
		connection: connection,
		log:        log.With("service", "identity.Service"),
	}
}

// UpsertUser implements spec §4.2's upsert_user.
func (s *Service) UpsertUser(ctx context.Context, userID int64, displayName, uiLanguage string, gender *string) (*domain.User, error) {
	var out *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.users.Upsert(ctx, tx, &domain.User{
			UserID:      userID,
			DisplayName: displayName,
			UILanguage:  uiLanguage,
			Gender:      gender,
		})
		return err
	})
	if err != nil {
		return nil, berrors.MapWrite("identity.UpsertUser", err)
	}
	return out, nil
}

// CreateManager implements spec §4.2's create_manager: idempotent,
// re-activating a soft-deleted row.
func (s *Service) CreateManager(ctx context.Context, userID int64, industry, code string) (*domain.Manager, error) {
	var out *domain.Manager
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.managers.Create(ctx, tx, &domain.Manager{
			ManagerID: userID,
			Industry:  industry,
			Code:      code,
		})
		return err
	})
	if err != nil {
		return nil, err // already a typed *berrors.Error from managerrepo
	}
	return out, nil
}

// CreateWorker implements spec §4.2's create_worker.
func (s *Service) CreateWorker(ctx context.Context, userID int64) (*domain.Worker, error) {
	var out *domain.Worker
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.workers.Create(ctx, tx, &domain.Worker{WorkerID: userID})
		return err
	})
	if err != nil {
		return nil, berrors.MapWrite("identity.CreateWorker", err)
	}
	return out, nil
}

// SoftDeleteManager sets deleted_at and disconnects every active
// connection involving this user in the same transaction (spec §4.2).
func (s *Service) SoftDeleteManager(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.managers.SoftDelete(ctx, tx, userID); err != nil {
			return berrors.MapWrite("identity.SoftDeleteManager", err)
		}
		if err := s.connection.UnbindAllForManager(ctx, tx, userID); err != nil {
			return berrors.MapWrite("identity.SoftDeleteManager", err)
		}
		return nil
	})
}

// SoftDeleteWorker mirrors SoftDeleteManager for the worker role.
func (s *Service) SoftDeleteWorker(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.workers.SoftDelete(ctx, tx, userID); err != nil {
			return berrors.MapWrite("identity.SoftDeleteWorker", err)
		}
		if err := s.connection.UnbindAllForWorker(ctx, tx, userID); err != nil {
			return berrors.MapWrite("identity.SoftDeleteWorker", err)
		}
		return nil
	})
}

// GetRole implements spec §4.2's get_role: the fingerprint invariant
// allows a user_id to carry both a soft-deleted Manager and an active
// Worker row (or vice versa); exactly one active role is ever returned.
func (s *Service) GetRole(ctx context.Context, userID int64) (Role, error) {
	if _, err := s.managers.GetActiveByID(ctx, nil, userID); err == nil {
		return RoleManager, nil
	} else if !isNotFound(err) {
		return RoleNone, berrors.MapWrite("identity.GetRole", err)
	}
	if _, err := s.workers.GetActiveByID(ctx, nil, userID); err == nil {
		return RoleWorker, nil
	} else if !isNotFound(err) {
		return RoleNone, berrors.MapWrite("identity.GetRole", err)
	}
	return RoleNone, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
