package webhook

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	subscriptionrepo "github.com/bridgeos/bridgeos/internal/data/repos/subscription"
	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	webhookeventrepo "github.com/bridgeos/bridgeos/internal/data/repos/webhookevent"
	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/platform/billing"
	"github.com/bridgeos/bridgeos/internal/platform/notify"
	"github.com/bridgeos/bridgeos/internal/services/subscription"
)

type countingChannel struct {
	calls int32
}

func (c *countingChannel) Name() string { return "counting" }

func (c *countingChannel) Notify(ctx context.Context, managerID int64, message string) error {
	atomic.AddInt32(&c.calls, 1)
	return nil
}

func TestWebhookService_Apply_ActivatesSubscriptionAndNotifies(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	events := webhookeventrepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	subSvc := subscription.NewService(tx, subs, log)
	ch := &countingChannel{}
	dispatcher := notify.NewDispatcher(log, time.Second, ch)
	svc := NewService(tx, events, subSvc, dispatcher, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-60001")

	ev := billing.Event{
		Kind:       "subscription_created",
		ExternalID: "ext-1",
		ManagerID:  mgr.ManagerID,
		Timestamp:  time.Now().UTC(),
		Raw:        json.RawMessage(`{}`),
	}
	if err := svc.Apply(ctx, ev); err != nil {
		t.Fatalf("apply: %v", err)
	}

	entitlement, err := subSvc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.Entitled {
		t.Fatalf("expected subscription_created to result in Entitled, got %v", entitlement)
	}
	if atomic.LoadInt32(&ch.calls) != 1 {
		t.Fatalf("expected exactly one notification dispatch, got %d", ch.calls)
	}
}

func TestWebhookService_Apply_ReplayIsNoop(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	events := webhookeventrepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	subSvc := subscription.NewService(tx, subs, log)
	ch := &countingChannel{}
	dispatcher := notify.NewDispatcher(log, time.Second, ch)
	svc := NewService(tx, events, subSvc, dispatcher, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-60002")
	ts := time.Now().UTC()

	ev := billing.Event{
		Kind:       "subscription_cancelled",
		ExternalID: "ext-2",
		ManagerID:  mgr.ManagerID,
		Timestamp:  ts,
		Raw:        json.RawMessage(`{}`),
	}
	if err := svc.Apply(ctx, ev); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := svc.Apply(ctx, ev); err != nil {
		t.Fatalf("replayed apply: %v", err)
	}

	if atomic.LoadInt32(&ch.calls) != 1 {
		t.Fatalf("expected the replay to skip re-notification, got %d calls", ch.calls)
	}
}

func TestWebhookService_Apply_UnknownKindIgnored(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	events := webhookeventrepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	subSvc := subscription.NewService(tx, subs, log)
	ch := &countingChannel{}
	dispatcher := notify.NewDispatcher(log, time.Second, ch)
	svc := NewService(tx, events, subSvc, dispatcher, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-60003")

	ev := billing.Event{
		Kind:      "some_unrelated_event",
		ManagerID: mgr.ManagerID,
		Timestamp: time.Now().UTC(),
		Raw:       json.RawMessage(`{}`),
	}
	if err := svc.Apply(ctx, ev); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if atomic.LoadInt32(&ch.calls) != 0 {
		t.Fatal("expected no notification for an unknown event kind")
	}

	entitlement, err := subSvc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.NotEntitled {
		t.Fatalf("expected no subscription row to be created for an unknown kind, got %v", entitlement)
	}
}
