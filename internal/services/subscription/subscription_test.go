package subscription

import (
	"context"
	"testing"
	"time"

	subscriptionrepo "github.com/bridgeos/bridgeos/internal/data/repos/subscription"
	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
)

func TestSubscriptionService_Effective_NoRowIsNotEntitled(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := subscriptionrepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-50001")

	entitlement, err := svc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.NotEntitled {
		t.Fatalf("expected NotEntitled with no subscription row, got %v", entitlement)
	}
}

func TestSubscriptionService_Effective_ActiveIsEntitled(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := subscriptionrepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-50002")
	if _, err := svc.Upsert(ctx, &domain.Subscription{
		ManagerID: mgr.ManagerID,
		Status:    domain.SubscriptionStatusActive,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entitlement, err := svc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.Entitled {
		t.Fatalf("expected Entitled for an active subscription, got %v", entitlement)
	}
}

func TestSubscriptionService_Effective_CancelledBeforeEndsAtStillEntitled(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := subscriptionrepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-50003")
	future := time.Now().UTC().Add(48 * time.Hour)
	if _, err := svc.Upsert(ctx, &domain.Subscription{
		ManagerID: mgr.ManagerID,
		Status:    domain.SubscriptionStatusCancelled,
		EndsAt:    &future,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entitlement, err := svc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.Entitled {
		t.Fatalf("expected a cancelled-but-not-yet-ended subscription to remain entitled, got %v", entitlement)
	}
}

func TestSubscriptionService_Effective_CancelledPastEndsAtNotEntitled(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := subscriptionrepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-50004")
	past := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := svc.Upsert(ctx, &domain.Subscription{
		ManagerID: mgr.ManagerID,
		Status:    domain.SubscriptionStatusCancelled,
		EndsAt:    &past,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entitlement, err := svc.Effective(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if entitlement != domain.NotEntitled {
		t.Fatalf("expected a lapsed cancelled subscription to be NotEntitled, got %v", entitlement)
	}
}
