// Package tasks implements spec §4.5: manager-authored tasks routed by
// the "**" prefix, sharing the messaging pipeline's translation path.
package tasks

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	taskrepo "github.com/bridgeos/bridgeos/internal/data/repos/task"
	userrepo "github.com/bridgeos/bridgeos/internal/data/repos/user"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/pkg/retry"
	"github.com/bridgeos/bridgeos/internal/platform/translator"
	"github.com/bridgeos/bridgeos/internal/services/connection"
)

const taskPrefix = "**"

const (
	translationAttempts  = 3
	translationBaseDelay = 500 * time.Millisecond
	translationDeadline  = 15 * time.Second
)

// IsTaskText reports whether inbound text should be routed here instead
// of to services/messaging (spec §4.5: "first two characters are the
// literal **").
func IsTaskText(text string) bool {
	return strings.HasPrefix(text, taskPrefix)
}

// StripPrefix returns the trimmed, non-empty description, or false if the
// remainder after stripping "**" is empty.
func StripPrefix(text string) (string, bool) {
	desc := strings.TrimSpace(strings.TrimPrefix(text, taskPrefix))
	return desc, desc != ""
}

type Service struct {
	db         *gorm.DB
	tasks      taskrepo.Repo
	users      userrepo.Repo
	managers   managerrepo.Repo
	connection *connection.Service
	translator translator.Translator
	log        *logger.Logger
}

func NewService(db *gorm.DB, tasks taskrepo.Repo, users userrepo.Repo, managers managerrepo.Repo, connectionSvc *connection.Service, tr translator.Translator, log *logger.Logger) *Service {
	return &Service{
		db:         db,
		tasks:      tasks,
		users:      users,
		managers:   managers,
		connection: connectionSvc,
		translator: tr,
		log:        log.With("service", "tasks.Service"),
	}
}

// Create implements spec §4.5's Create. Only a manager may call this;
// the caller (internal/bot) is responsible for having already verified
// the sender's role.
func (s *Service) Create(ctx context.Context, managerID int64, botSlot int, rawText string) (*domain.Task, string, error) {
	desc, ok := StripPrefix(rawText)
	if !ok {
		return nil, "", berrors.New(berrors.CodeValidation, "tasks.Create", "empty task description")
	}

	conn, err := s.connection.GetActiveForManagerSlot(ctx, managerID, botSlot)
	if err != nil {
		return nil, "", err
	}

	translated, err := s.translateForWorker(ctx, desc, conn.ManagerID, conn.WorkerID)
	if err != nil {
		return nil, "", err
	}

	var out *domain.Task
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.tasks.Create(ctx, tx, &domain.Task{
			ConnectionID:          conn.ConnectionID,
			Description:           desc,
			DescriptionTranslated: &translated,
		})
		return err
	})
	if err != nil {
		return nil, "", berrors.MapWrite("tasks.Create", err)
	}
	return out, translated, nil
}

// Complete implements spec §4.5's Complete: task exists, its connection
// is still active, actor_id equals the connection's worker_id, and the
// task is currently pending — all checked within one transaction via a
// row lock.
func (s *Service) Complete(ctx context.Context, taskID, actorID int64) (*domain.Task, error) {
	var out *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.tasks.LockByID(ctx, tx, taskID)
		if err != nil {
			return berrors.Wrap(berrors.CodeForbidden, "tasks.Complete", err)
		}
		if t.Status == domain.TaskStatusCompleted {
			out = t
			return berrors.New(berrors.CodeAlreadyCompleted, "tasks.Complete", "task already completed")
		}

		if !s.connectionBelongsTo(ctx, tx, t.ConnectionID, actorID) {
			return berrors.New(berrors.CodeForbidden, "tasks.Complete", "actor is not the connection's worker")
		}

		if err := s.tasks.Complete(ctx, tx, taskID); err != nil {
			return berrors.MapWrite("tasks.Complete", err)
		}
		t.Status = domain.TaskStatusCompleted
		now := timeNow()
		t.CompletedAt = &now
		out = t
		return nil
	})
	if err != nil && berrors.CodeOf(err) == berrors.CodeAlreadyCompleted {
		return out, err
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListForManager implements spec §4.5's list_for_manager.
func (s *Service) ListForManager(ctx context.Context, managerID int64, since *time.Time) ([]*domain.Task, error) {
	window := defaultSince(since)
	rows, err := s.tasks.ListForManager(ctx, nil, managerID, window)
	if err != nil {
		return nil, berrors.MapWrite("tasks.ListForManager", err)
	}
	return rows, nil
}

// ListForWorker implements spec §4.5's list_for_worker.
func (s *Service) ListForWorker(ctx context.Context, workerID int64, since *time.Time) ([]*domain.Task, error) {
	window := defaultSince(since)
	rows, err := s.tasks.ListForWorker(ctx, nil, workerID, window)
	if err != nil {
		return nil, berrors.MapWrite("tasks.ListForWorker", err)
	}
	return rows, nil
}

func defaultSince(since *time.Time) time.Time {
	if since != nil {
		return *since
	}
	return timeNow().Add(-24 * time.Hour)
}

func timeNow() time.Time { return time.Now().UTC() }

func (s *Service) translateForWorker(ctx context.Context, text string, managerID, workerID int64) (string, error) {
	mgr, err := s.managers.GetByID(ctx, nil, managerID)
	if err != nil {
		return "", berrors.MapWrite("tasks.translateForWorker", err)
	}
	managerUser, err := s.users.GetByID(ctx, nil, managerID)
	if err != nil {
		return "", berrors.MapWrite("tasks.translateForWorker", err)
	}
	workerUser, err := s.users.GetByID(ctx, nil, workerID)
	if err != nil {
		return "", berrors.MapWrite("tasks.translateForWorker", err)
	}

	var gender string
	if workerUser.Gender != nil {
		gender = *workerUser.Gender
	}

	var result string
	err = retry.Do(ctx, translationAttempts, translationBaseDelay, func(attemptCtx context.Context) error {
		deadlineCtx, cancel := context.WithTimeout(attemptCtx, translationDeadline)
		defer cancel()
		out, err := s.translator.Translate(deadlineCtx, translator.Request{
			Text:         text,
			FromLanguage: managerUser.UILanguage,
			ToLanguage:   workerUser.UILanguage,
			Gender:       gender,
			Industry:     mgr.Industry,
		})
		if err != nil {
			return err
		}
		if out == "" {
			return berrors.New(berrors.CodeTranslationFailed, "tasks.translateForWorker", "empty translation result")
		}
		result = out
		return nil
	})
	if err != nil {
		return "", berrors.Wrap(berrors.CodeTranslationFailed, "tasks.translateForWorker", err)
	}
	return result, nil
}

func (s *Service) connectionBelongsTo(ctx context.Context, tx *gorm.DB, connectionID, workerID int64) bool {
	var count int64
	tx.WithContext(ctx).
		Table("connection").
		Where("connection_id = ? AND worker_id = ? AND status = ?", connectionID, workerID, domain.ConnectionStatusActive).
		Count(&count)
	return count > 0
}
