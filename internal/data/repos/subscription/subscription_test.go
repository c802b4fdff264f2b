package subscription

import (
	"context"
	"testing"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
)

func TestSubscriptionRepo_Upsert_KeyedOnManagerID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-64001")

	if _, err := repo.Upsert(ctx, tx, &domain.Subscription{ManagerID: mgr.ManagerID, Status: domain.SubscriptionStatusActive}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, tx, &domain.Subscription{ManagerID: mgr.ManagerID, Status: domain.SubscriptionStatusCancelled}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	row, err := repo.GetByManagerID(ctx, tx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("get by manager id: %v", err)
	}
	if row.Status != domain.SubscriptionStatusCancelled {
		t.Fatalf("expected the second upsert to overwrite status, got %q", row.Status)
	}
}

func TestSubscriptionRepo_GetByManagerID_NotFoundWithNoRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-64002")

	if _, err := repo.GetByManagerID(ctx, tx, mgr.ManagerID); err == nil {
		t.Fatal("expected an error when no subscription row exists")
	}
}
