package extraction

import (
	"context"
	"testing"
	"time"

	connectionrepo "github.com/bridgeos/bridgeos/internal/data/repos/connection"
	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	messagerepo "github.com/bridgeos/bridgeos/internal/data/repos/message"
	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	workerrepo "github.com/bridgeos/bridgeos/internal/data/repos/worker"
	"github.com/bridgeos/bridgeos/internal/domain"
	"github.com/bridgeos/bridgeos/internal/platform/summarizer"
	"github.com/bridgeos/bridgeos/internal/services/connection"
)

type fakeSummarizer struct {
	calls    int
	bullets  []string
	received []summarizer.MessageLine
}

func (f *fakeSummarizer) Extract(ctx context.Context, messages []summarizer.MessageLine, targetLanguage string) ([]string, error) {
	f.calls++
	f.received = messages
	if f.bullets != nil {
		return f.bullets, nil
	}
	return []string{"did a thing"}, nil
}

func TestExtractionService_Extract_NoConnectionsShortCircuits(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	messages := messagerepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	sum := &fakeSummarizer{}
	svc := NewService(messages, connectionSvc, sum, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-70001")

	bullets, err := svc.Extract(ctx, mgr.ManagerID, "en")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(bullets) != 0 {
		t.Fatalf("expected an empty result with no active connections, got %v", bullets)
	}
	if sum.calls != 0 {
		t.Fatal("expected the summarizer to never be called with no active connections")
	}
}

func TestExtractionService_Extract_NoMessagesInWindowShortCircuits(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	messages := messagerepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	sum := &fakeSummarizer{}
	svc := NewService(messages, connectionSvc, sum, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-70002")
	worker := testutil.SeedWorker(t, ctx, tx)
	testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	bullets, err := svc.Extract(ctx, mgr.ManagerID, "en")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(bullets) != 0 {
		t.Fatalf("expected an empty result with no messages in the window, got %v", bullets)
	}
	if sum.calls != 0 {
		t.Fatal("expected the summarizer to never be called with no messages in the window")
	}
}

func TestExtractionService_Extract_WindowedMessagesReachSummarizer(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	messageRepo := messagerepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	sum := &fakeSummarizer{bullets: []string{"fix the pump", "restock gloves"}}
	svc := NewService(messageRepo, connectionSvc, sum, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-70003")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	translated := "translated text"
	if _, err := messageRepo.Create(ctx, tx, &domain.Message{
		ConnectionID:   conn.ConnectionID,
		SenderID:       mgr.ManagerID,
		OriginalText:   "the pump is broken",
		TranslatedText: &translated,
		SentAt:         time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	bullets, err := svc.Extract(ctx, mgr.ManagerID, "es")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(bullets) != 2 {
		t.Fatalf("expected 2 bullets from the fake summarizer, got %v", bullets)
	}
	if sum.calls != 1 {
		t.Fatalf("expected exactly one summarizer call, got %d", sum.calls)
	}
	if len(sum.received) != 1 || sum.received[0].Text != "the pump is broken" {
		t.Fatalf("expected the seeded message to reach the summarizer, got %+v", sum.received)
	}
}
