package message

import (
	"context"
	"testing"
	"time"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
)

func TestMessageRepo_LastN_ReturnsOldestFirstCappedAtK(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-61001")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		translated := "t"
		if _, err := repo.Create(ctx, tx, &domain.Message{
			ConnectionID:   conn.ConnectionID,
			SenderID:       mgr.ManagerID,
			OriginalText:   "message",
			TranslatedText: &translated,
			SentAt:         base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed message %d: %v", i, err)
		}
	}

	rows, err := repo.LastN(ctx, tx, conn.ConnectionID, 3)
	if err != nil {
		t.Fatalf("last n: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 0; i < len(rows)-1; i++ {
		if rows[i].SentAt.After(rows[i+1].SentAt) {
			t.Fatalf("expected ascending sent_at order, got %v then %v", rows[i].SentAt, rows[i+1].SentAt)
		}
	}
}

func TestMessageRepo_LastN_EmptyWhenNoneExist(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-61002")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	rows, err := repo.LastN(ctx, tx, conn.ConnectionID, 6)
	if err != nil {
		t.Fatalf("last n: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for a connection with no messages, got %d", len(rows))
	}
}

func TestMessageRepo_ForConnectionsWindow_FiltersByTime(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-61003")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	translated := "t"
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	if _, err := repo.Create(ctx, tx, &domain.Message{
		ConnectionID: conn.ConnectionID, SenderID: mgr.ManagerID, OriginalText: "old", TranslatedText: &translated, SentAt: old,
	}); err != nil {
		t.Fatalf("seed old message: %v", err)
	}
	if _, err := repo.Create(ctx, tx, &domain.Message{
		ConnectionID: conn.ConnectionID, SenderID: mgr.ManagerID, OriginalText: "recent", TranslatedText: &translated, SentAt: recent,
	}); err != nil {
		t.Fatalf("seed recent message: %v", err)
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	rows, err := repo.ForConnectionsWindow(ctx, tx, []int64{conn.ConnectionID}, since)
	if err != nil {
		t.Fatalf("for connections window: %v", err)
	}
	if len(rows) != 1 || rows[0].OriginalText != "recent" {
		t.Fatalf("expected only the recent message in the window, got %+v", rows)
	}
}
