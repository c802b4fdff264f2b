package usage

import (
	"context"
	"testing"

	usagerepo "github.com/bridgeos/bridgeos/internal/data/repos/usage"
	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
)

func TestUsageService_Increment_BlocksAtFreeLimit(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := usagerepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-40001")

	const freeLimit = 3
	for i := int64(1); i <= freeLimit-1; i++ {
		count, blocked, err := svc.Increment(ctx, mgr.ManagerID, freeLimit)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
		if blocked {
			t.Fatalf("expected not blocked before reaching the limit, count=%d", count)
		}
	}

	count, blocked, err := svc.Increment(ctx, mgr.ManagerID, freeLimit)
	if err != nil {
		t.Fatalf("increment at limit: %v", err)
	}
	if count != freeLimit || !blocked {
		t.Fatalf("expected blocked at count %d, got count=%d blocked=%v", freeLimit, count, blocked)
	}
}

func TestUsageService_Reset_ClearsCounterAndBlock(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := usagerepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-40002")

	if _, _, err := svc.Increment(ctx, mgr.ManagerID, 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := svc.Reset(ctx, mgr.ManagerID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	row, err := svc.Get(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.MessagesSent != 0 || row.IsBlocked {
		t.Fatalf("expected a cleared counter after reset, got %+v", row)
	}
}

func TestUsageService_Get_CreatesZeroedRowOnFirstRead(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := usagerepo.NewRepo(tx, log)
	svc := NewService(tx, repo, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-40003")

	row, err := svc.Get(ctx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.MessagesSent != 0 || row.IsBlocked {
		t.Fatalf("expected a zeroed row on first read, got %+v", row)
	}
}
