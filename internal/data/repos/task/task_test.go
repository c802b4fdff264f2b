package task

import (
	"context"
	"testing"
	"time"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
)

func TestTaskRepo_CreateAndComplete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-62001")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	row, err := repo.Create(ctx, tx, &domain.Task{ConnectionID: conn.ConnectionID, Description: "fix pump"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.Status != domain.TaskStatusPending {
		t.Fatalf("expected pending status, got %v", row.Status)
	}

	if err := repo.Complete(ctx, tx, row.TaskID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := repo.Complete(ctx, tx, row.TaskID); err == nil {
		t.Fatal("expected completing an already-completed task to error out (guarded by status=pending)")
	}
}

func TestTaskRepo_LockByID_RequiresTx(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	if _, err := repo.LockByID(ctx, nil, 1); err == nil {
		t.Fatal("expected LockByID to require a transaction")
	}
}

func TestTaskRepo_ListForManagerAndWorker(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-62002")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	if _, err := repo.Create(ctx, tx, &domain.Task{ConnectionID: conn.ConnectionID, Description: "task one"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	managerRows, err := repo.ListForManager(ctx, tx, mgr.ManagerID, since)
	if err != nil {
		t.Fatalf("list for manager: %v", err)
	}
	if len(managerRows) != 1 {
		t.Fatalf("expected 1 task for the manager, got %d", len(managerRows))
	}

	workerRows, err := repo.ListForWorker(ctx, tx, worker.WorkerID, since)
	if err != nil {
		t.Fatalf("list for worker: %v", err)
	}
	if len(workerRows) != 1 {
		t.Fatalf("expected 1 task for the worker, got %d", len(workerRows))
	}
}
