package usage

import (
	"context"
	"testing"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
)

func TestUsageRepo_Get_CreatesZeroedRowOnFirstRead(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-63001")

	row, err := repo.Get(ctx, tx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.MessagesSent != 0 || row.IsBlocked {
		t.Fatalf("expected a zeroed row, got %+v", row)
	}
}

func TestUsageRepo_Increment_SetsBlockedAtLimit(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-63002")

	row, err := repo.Increment(ctx, tx, mgr.ManagerID, 2)
	if err != nil {
		t.Fatalf("increment 1: %v", err)
	}
	if row.MessagesSent != 1 || row.IsBlocked {
		t.Fatalf("expected count 1 not blocked, got %+v", row)
	}

	row, err = repo.Increment(ctx, tx, mgr.ManagerID, 2)
	if err != nil {
		t.Fatalf("increment 2: %v", err)
	}
	if row.MessagesSent != 2 || !row.IsBlocked {
		t.Fatalf("expected count 2 blocked at the limit, got %+v", row)
	}
}

func TestUsageRepo_Reset(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-63003")

	if _, err := repo.Increment(ctx, tx, mgr.ManagerID, 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.Reset(ctx, tx, mgr.ManagerID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	row, err := repo.Get(ctx, tx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if row.MessagesSent != 0 || row.IsBlocked {
		t.Fatalf("expected a cleared row after reset, got %+v", row)
	}
}
