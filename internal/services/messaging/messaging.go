// Package messaging implements spec §4.4's message pipeline and §4.6's
// translation-context assembler.
package messaging

import (
	"context"
	"time"

	"gorm.io/gorm"

	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	messagerepo "github.com/bridgeos/bridgeos/internal/data/repos/message"
	userrepo "github.com/bridgeos/bridgeos/internal/data/repos/user"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/pkg/retry"
	"github.com/bridgeos/bridgeos/internal/platform/chattransport"
	"github.com/bridgeos/bridgeos/internal/platform/translator"
	"github.com/bridgeos/bridgeos/internal/services/connection"
	"github.com/bridgeos/bridgeos/internal/services/identity"
	"github.com/bridgeos/bridgeos/internal/services/subscription"
	"github.com/bridgeos/bridgeos/internal/services/usage"
)

const (
	defaultContextWindow  = 6
	translationAttempts   = 3
	translationBaseDelay  = 500 * time.Millisecond
	translationDeadline   = 15 * time.Second
	transportSendDeadline = 5 * time.Second
)

// Config carries the ambient tuning knobs spec §6 leaves to deployment
// configuration: the free-message limit and the whitelist that bypasses
// usage gating entirely.
type Config struct {
	FreeLimit     int64
	TestUserIDs   map[int64]bool
	ContextWindow int
}

type Service struct {
	db           *gorm.DB
	messages     messagerepo.Repo
	users        userrepo.Repo
	managers     managerrepo.Repo
	identity     *identity.Service
	connections  *connection.Service
	subscription *subscription.Service
	usage        *usage.Service
	translator   translator.Translator
	transport    chattransport.Transport
	cfg          Config
	log          *logger.Logger
}

func NewService(
	db *gorm.DB,
	messages messagerepo.Repo,
	users userrepo.Repo,
	managers managerrepo.Repo,
	identitySvc *identity.Service,
	connectionSvc *connection.Service,
	subscriptionSvc *subscription.Service,
	usageSvc *usage.Service,
	tr translator.Translator,
	transport chattransport.Transport,
	cfg Config,
	log *logger.Logger,
) *Service {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}
	if cfg.TestUserIDs == nil {
		cfg.TestUserIDs = map[int64]bool{}
	}
	return &Service{
		db:           db,
		messages:     messages,
		users:        users,
		managers:     managers,
		identity:     identitySvc,
		connections:  connectionSvc,
		subscription: subscriptionSvc,
		usage:        usageSvc,
		translator:   tr,
		transport:    transport,
		cfg:          cfg,
		log:          log.With("service", "messaging.Service"),
	}
}

// DeliverText implements spec §4.4's deliver_text end to end.
func (s *Service) DeliverText(ctx context.Context, senderID int64, botSlot int, text string) (*domain.Message, error) {
	conn, recipientID, err := s.locateConnection(ctx, senderID, botSlot)
	if err != nil {
		return nil, err
	}

	isManagerSender := conn.ManagerID == senderID
	if isManagerSender {
		if err := s.gateUsage(ctx, conn.ManagerID); err != nil {
			return nil, err
		}
	}

	fromLang, toLang, gender, industry, err := s.resolveTranslationInputs(ctx, conn, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	contextLines, err := s.assembleContext(ctx, conn.ConnectionID)
	if err != nil {
		return nil, err
	}

	translated, err := s.translate(ctx, text, fromLang, toLang, gender, industry, contextLines)
	if err != nil {
		return nil, err
	}

	row := &domain.Message{
		ConnectionID:   conn.ConnectionID,
		SenderID:       senderID,
		OriginalText:   text,
		TranslatedText: &translated,
		SentAt:         time.Now().UTC(),
	}
	stored, err := s.messages.Create(ctx, nil, row)
	if err != nil {
		return nil, berrors.MapWrite("messaging.DeliverText", err)
	}

	s.deliverBestEffort(ctx, botSlot, recipientID, translated)

	return stored, nil
}

func (s *Service) locateConnection(ctx context.Context, senderID int64, botSlot int) (*domain.Connection, int64, error) {
	role, err := s.identity.GetRole(ctx, senderID)
	if err != nil {
		return nil, 0, err
	}
	switch role {
	case identity.RoleManager:
		conn, err := s.connections.GetActiveForManagerSlot(ctx, senderID, botSlot)
		if err != nil {
			return nil, 0, berrors.New(berrors.CodeNotConnected, "messaging.locateConnection", "no active connection for manager/slot")
		}
		return conn, conn.WorkerID, nil
	case identity.RoleWorker:
		conn, err := s.connections.GetActiveForWorker(ctx, senderID)
		if err != nil {
			return nil, 0, berrors.New(berrors.CodeNotConnected, "messaging.locateConnection", "no active connection for worker")
		}
		if conn.BotSlot != botSlot {
			s.log.Warn("wrong slot for worker message", "worker_id", senderID, "expected_slot", conn.BotSlot, "got_slot", botSlot)
			return nil, 0, berrors.New(berrors.CodeWrongSlot, "messaging.locateConnection", "bot slot mismatch")
		}
		return conn, conn.ManagerID, nil
	default:
		return nil, 0, berrors.New(berrors.CodeNotConnected, "messaging.locateConnection", "sender has no active role")
	}
}

// gateUsage implements spec §4.4 step 2. Entitled subscriptions and
// whitelisted test users bypass the tracker entirely.
func (s *Service) gateUsage(ctx context.Context, managerID int64) error {
	if s.cfg.TestUserIDs[managerID] {
		return nil
	}
	entitlement, err := s.subscription.Effective(ctx, managerID)
	if err != nil {
		return err
	}
	if entitlement == domain.Entitled {
		return nil
	}
	// Check the counter as it stands BEFORE this message: §4.7's
	// increment() reports is_blocked computed from the post-increment
	// count, so the message that crosses the limit is still the one
	// that gets through — it's the next one that must be rejected.
	current, err := s.usage.Get(ctx, managerID)
	if err != nil {
		return err
	}
	if current.IsBlocked {
		return berrors.New(berrors.CodeLimitReached, "messaging.gateUsage", "free message limit reached")
	}
	if _, _, err := s.usage.Increment(ctx, managerID, s.cfg.FreeLimit); err != nil {
		return err
	}
	return nil
}

// resolveTranslationInputs reads the sender/recipient UI languages, the
// recipient's gender (for gendered target languages), and the manager's
// industry (for terminology), as spec §4.4 step 4 requires.
func (s *Service) resolveTranslationInputs(ctx context.Context, conn *domain.Connection, senderID, recipientID int64) (from, to, gender, industry string, err error) {
	senderUser, err := s.users.GetByID(ctx, nil, senderID)
	if err != nil {
		return "", "", "", "", berrors.MapWrite("messaging.resolveTranslationInputs", err)
	}
	recipientUser, err := s.users.GetByID(ctx, nil, recipientID)
	if err != nil {
		return "", "", "", "", berrors.MapWrite("messaging.resolveTranslationInputs", err)
	}
	mgr, err := s.managers.GetByID(ctx, nil, conn.ManagerID)
	if err != nil {
		return "", "", "", "", berrors.MapWrite("messaging.resolveTranslationInputs", err)
	}
	if recipientUser.Gender != nil {
		gender = *recipientUser.Gender
	}
	return senderUser.UILanguage, recipientUser.UILanguage, gender, mgr.Industry, nil
}

// assembleContext is spec §4.6's read-side contract.
func (s *Service) assembleContext(ctx context.Context, connectionID int64) ([]translator.ContextLine, error) {
	rows, err := s.messages.LastN(ctx, nil, connectionID, s.cfg.ContextWindow)
	if err != nil {
		return nil, berrors.MapWrite("messaging.assembleContext", err)
	}
	langs := map[int64]string{}
	out := make([]translator.ContextLine, 0, len(rows))
	for _, m := range rows {
		lang, ok := langs[m.SenderID]
		if !ok {
			u, err := s.users.GetByID(ctx, nil, m.SenderID)
			if err == nil {
				lang = u.UILanguage
			}
			langs[m.SenderID] = lang
		}
		out = append(out, translator.ContextLine{SenderLanguage: lang, Text: m.OriginalText})
	}
	return out, nil
}

// translate implements spec §4.4 step 4: retried with exponential
// backoff up to 3 attempts, 15s per-attempt deadline.
func (s *Service) translate(ctx context.Context, text, from, to, gender, industry string, contextLines []translator.ContextLine) (string, error) {
	var result string
	err := retry.Do(ctx, translationAttempts, translationBaseDelay, func(attemptCtx context.Context) error {
		deadlineCtx, cancel := context.WithTimeout(attemptCtx, translationDeadline)
		defer cancel()
		out, err := s.translator.Translate(deadlineCtx, translator.Request{
			Text:         text,
			FromLanguage: from,
			ToLanguage:   to,
			Gender:       gender,
			Industry:     industry,
			Context:      contextLines,
		})
		if err != nil {
			return err
		}
		if out == "" {
			return berrors.New(berrors.CodeTranslationFailed, "messaging.translate", "empty translation result")
		}
		result = out
		return nil
	})
	if err != nil {
		return "", berrors.Wrap(berrors.CodeTranslationFailed, "messaging.translate", err)
	}
	return result, nil
}

// deliverBestEffort implements spec §4.4 step 5's delivery-after-commit
// rule: a transport failure never rolls back the persisted Message.
func (s *Service) deliverBestEffort(ctx context.Context, botSlot int, recipientID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, transportSendDeadline)
	defer cancel()
	if err := s.transport.Send(sendCtx, botSlot, recipientID, text); err != nil {
		s.log.Warn("transport delivery failed, message already persisted", "bot_slot", botSlot, "recipient_id", recipientID, "error", err)
	}
}
