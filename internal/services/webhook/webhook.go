// Package webhook implements the application-logic half of spec §4.9:
// idempotent event ledger, event-kind-to-transition mapping, Subscription
// UPSERT, and best-effort notification dispatch. HTTP-layer concerns
// (signature verification, the always-200 response) live in
// internal/http/handlers.
package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	webhookeventrepo "github.com/bridgeos/bridgeos/internal/data/repos/webhookevent"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/platform/billing"
	"github.com/bridgeos/bridgeos/internal/platform/notify"
	"github.com/bridgeos/bridgeos/internal/services/subscription"
)

type Service struct {
	db       *gorm.DB
	events   webhookeventrepo.Repo
	subs     *subscription.Service
	notifier *notify.Dispatcher
	log      *logger.Logger
}

func NewService(db *gorm.DB, events webhookeventrepo.Repo, subs *subscription.Service, notifier *notify.Dispatcher, log *logger.Logger) *Service {
	return &Service{db: db, events: events, subs: subs, notifier: notifier, log: log.With("service", "webhook.Service")}
}

// transitionFor maps a raw event_kind onto the Subscription status
// transitions named in spec §4.9: created|resumed|recovered → active;
// cancelled → cancelled; expired → expired; payment_failed|paused →
// paused. known is false only for event kinds BridgeOS's billing
// provider never emits, which the caller logs and 200s without
// touching Subscription at all. drivesTransition is false for kinds the
// provider does emit but that carry no status change under this state
// machine (subscription_updated, subscription_payment_success,
// subscription_plan_changed) — those are still recorded for idempotency
// and acknowledged, just without a Subscription upsert.
func transitionFor(kind string) (status string, drivesTransition bool, known bool) {
	switch kind {
	case "subscription_created", "subscription_resumed", "subscription_payment_recovered":
		return domain.SubscriptionStatusActive, true, true
	case "subscription_cancelled":
		return domain.SubscriptionStatusCancelled, true, true
	case "subscription_expired":
		return domain.SubscriptionStatusExpired, true, true
	case "subscription_payment_failed", "subscription_paused":
		return domain.SubscriptionStatusPaused, true, true
	case "subscription_updated", "subscription_payment_success", "subscription_plan_changed":
		return "", false, true
	default:
		return "", false, false
	}
}

// Apply implements spec §4.9's idempotency/transition/notify contract.
// Callers (the HTTP handler) invoke this AFTER signature verification
// passes and always respond 200 regardless of the error this returns.
func (s *Service) Apply(ctx context.Context, ev billing.Event) error {
	status, drivesTransition, known := transitionFor(ev.Kind)
	if !known {
		s.log.Info("unknown billing event kind, ignoring", "kind", ev.Kind, "manager_id", ev.ManagerID)
		return nil
	}

	recorded, err := s.events.RecordIfNew(ctx, nil, &domain.WebhookEvent{
		ID:             uuid.New(),
		ManagerID:      ev.ManagerID,
		EventKind:      ev.Kind,
		ExternalID:     ev.ExternalID,
		EventTimestamp: ev.Timestamp,
		RawPayload:     datatypes.JSON(ev.Raw),
		ReceivedAt:     time.Now().UTC(),
	})
	if err != nil {
		return berrors.MapWrite("webhook.Apply", err)
	}
	if !recorded {
		// Replay of an already-applied event: spec §4.9/P6 requires the
		// same end state, which the prior application already produced.
		s.log.Info("replayed billing event, skipping re-application", "kind", ev.Kind, "manager_id", ev.ManagerID)
		return nil
	}

	if !drivesTransition {
		s.log.Info("billing event acknowledged, no status transition", "kind", ev.Kind, "manager_id", ev.ManagerID)
		return nil
	}

	sub := &domain.Subscription{
		ManagerID:         ev.ManagerID,
		ExternalID:        strPtr(ev.ExternalID),
		Status:            status,
		CustomerPortalURL: strPtrOrNil(ev.CustomerPortal),
		RenewsAt:          ev.RenewsAt,
		EndsAt:            ev.EndsAt,
		Metadata:          datatypes.JSON([]byte("{}")),
	}
	if _, err := s.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, ev.ManagerID, "Your BridgeOS subscription status changed to: "+status)
	return nil
}

func strPtr(s string) *string { return &s }

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
