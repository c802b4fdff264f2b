package connection

import (
	"context"
	"testing"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
)

func TestConnectionRepo_Bind_SlotOccupied(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-00001")
	w1 := testutil.SeedWorker(t, ctx, tx)
	w2 := testutil.SeedWorker(t, ctx, tx)

	if _, err := repo.Bind(ctx, tx, &domain.Connection{ManagerID: mgr.ManagerID, WorkerID: w1.WorkerID, BotSlot: 1}); err != nil {
		t.Fatalf("first bind: %v", err)
	}

	_, err := repo.Bind(ctx, tx, &domain.Connection{ManagerID: mgr.ManagerID, WorkerID: w2.WorkerID, BotSlot: 1})
	if err == nil {
		t.Fatal("expected SlotOccupied, got nil")
	}
	if berrors.CodeOf(err) != berrors.CodeSlotOccupied {
		t.Fatalf("expected CodeSlotOccupied, got %v (%v)", berrors.CodeOf(err), err)
	}
}

func TestConnectionRepo_Bind_WorkerAlreadyConnected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr1 := testutil.SeedManager(t, ctx, tx, "BRIDGE-00002")
	mgr2 := testutil.SeedManager(t, ctx, tx, "BRIDGE-00003")
	w := testutil.SeedWorker(t, ctx, tx)

	if _, err := repo.Bind(ctx, tx, &domain.Connection{ManagerID: mgr1.ManagerID, WorkerID: w.WorkerID, BotSlot: 1}); err != nil {
		t.Fatalf("first bind: %v", err)
	}

	_, err := repo.Bind(ctx, tx, &domain.Connection{ManagerID: mgr2.ManagerID, WorkerID: w.WorkerID, BotSlot: 2})
	if err == nil {
		t.Fatal("expected WorkerAlreadyConnected, got nil")
	}
	if berrors.CodeOf(err) != berrors.CodeWorkerAlreadyConnected {
		t.Fatalf("expected CodeWorkerAlreadyConnected, got %v (%v)", berrors.CodeOf(err), err)
	}
}

func TestConnectionRepo_Unbind_IdempotentNoop(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-00004")
	w := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, w.WorkerID, 1)

	first, err := repo.Unbind(ctx, tx, conn.ConnectionID)
	if err != nil || !first {
		t.Fatalf("first unbind: first=%v err=%v", first, err)
	}

	second, err := repo.Unbind(ctx, tx, conn.ConnectionID)
	if err != nil {
		t.Fatalf("second unbind: %v", err)
	}
	if second {
		t.Fatal("expected second unbind to report no rows affected")
	}
}

func TestConnectionRepo_ListActiveForManager_CapsAtFive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-00005")
	for slot := 1; slot <= 5; slot++ {
		w := testutil.SeedWorker(t, ctx, tx)
		testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, w.WorkerID, slot)
	}

	rows, err := repo.ListActiveForManager(ctx, tx, mgr.ManagerID)
	if err != nil {
		t.Fatalf("ListActiveForManager: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 active connections, got %d", len(rows))
	}
}
