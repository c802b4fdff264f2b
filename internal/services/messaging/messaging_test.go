package messaging

import (
	"context"
	"errors"
	"testing"

	connectionrepo "github.com/bridgeos/bridgeos/internal/data/repos/connection"
	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	messagerepo "github.com/bridgeos/bridgeos/internal/data/repos/message"
	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	userrepo "github.com/bridgeos/bridgeos/internal/data/repos/user"
	workerrepo "github.com/bridgeos/bridgeos/internal/data/repos/worker"
	subscriptionrepo "github.com/bridgeos/bridgeos/internal/data/repos/subscription"
	usagerepo "github.com/bridgeos/bridgeos/internal/data/repos/usage"
	"github.com/bridgeos/bridgeos/internal/domain"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/platform/chattransport"
	"github.com/bridgeos/bridgeos/internal/platform/translator"
	"github.com/bridgeos/bridgeos/internal/services/connection"
	"github.com/bridgeos/bridgeos/internal/services/identity"
	"github.com/bridgeos/bridgeos/internal/services/subscription"
	"github.com/bridgeos/bridgeos/internal/services/usage"
)

// fakeTranslator is a deterministic double for the OpenAI-backed adapter:
// it never calls out, just echoes a recognizable transform of the input so
// assertions can tell a translated message from the original.
type fakeTranslator struct {
	calls int
	err   error
	out   string
}

func (f *fakeTranslator) Translate(ctx context.Context, req translator.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.out != "" {
		return f.out, nil
	}
	return "[" + req.ToLanguage + "] " + req.Text, nil
}

func TestMessagingService_DeliverText_ManagerToWorker(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)

	tr := &fakeTranslator{}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 3}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10001")
	worker := testutil.SeedWorker(t, ctx, tx)
	testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	msg, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "hello there")
	if err != nil {
		t.Fatalf("DeliverText: %v", err)
	}
	if msg.OriginalText != "hello there" {
		t.Fatalf("unexpected original text: %q", msg.OriginalText)
	}
	if msg.TranslatedText == nil || *msg.TranslatedText == "" {
		t.Fatal("expected a non-empty translated text")
	}
	if tr.calls != 1 {
		t.Fatalf("expected exactly one translator call, got %d", tr.calls)
	}

	sent := transport.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(sent))
	}
	if sent[0].RecipientUserID != worker.WorkerID {
		t.Fatalf("expected delivery to worker %d, got %d", worker.WorkerID, sent[0].RecipientUserID)
	}
	if sent[0].BotSlot != 1 {
		t.Fatalf("expected bot slot 1, got %d", sent[0].BotSlot)
	}
}

func TestMessagingService_DeliverText_NoActiveConnection(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)

	tr := &fakeTranslator{}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 3}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10002")

	_, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "hello")
	if err == nil {
		t.Fatal("expected an error for a sender with no active connection")
	}
	if berrors.CodeOf(err) != berrors.CodeNotConnected {
		t.Fatalf("expected CodeNotConnected, got %v (%v)", berrors.CodeOf(err), err)
	}
	if len(transport.Sent()) != 0 {
		t.Fatal("expected no delivery attempt when the connection lookup fails")
	}
}

func TestMessagingService_DeliverText_FreeLimitReached(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)

	tr := &fakeTranslator{}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 1}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10003")
	worker := testutil.SeedWorker(t, ctx, tx)
	testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	if _, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "first"); err != nil {
		t.Fatalf("first message should succeed under the limit: %v", err)
	}

	_, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "second")
	if err == nil {
		t.Fatal("expected the second message to be blocked by the free limit")
	}
	if berrors.CodeOf(err) != berrors.CodeLimitReached {
		t.Fatalf("expected CodeLimitReached, got %v (%v)", berrors.CodeOf(err), err)
	}
}

func TestMessagingService_DeliverText_EntitledSubscriptionBypassesLimit(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)

	tr := &fakeTranslator{}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 1}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10004")
	worker := testutil.SeedWorker(t, ctx, tx)
	testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	if _, err := subscriptionSvc.Upsert(ctx, &domain.Subscription{
		ManagerID: mgr.ManagerID,
		Status:    domain.SubscriptionStatusActive,
	}); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "msg"); err != nil {
			t.Fatalf("message %d should bypass the free limit under an active subscription: %v", i, err)
		}
	}
}

func TestMessagingService_DeliverText_TranslationFailurePersistsNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)
	_ = subscriptionSvc

	tr := &fakeTranslator{err: errors.New("boom")}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 3}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10005")
	worker := testutil.SeedWorker(t, ctx, tx)
	conn := testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 1)

	_, err := svc.DeliverText(ctx, mgr.ManagerID, 1, "hello")
	if err == nil {
		t.Fatal("expected a translation failure error")
	}
	if berrors.CodeOf(err) != berrors.CodeTranslationFailed {
		t.Fatalf("expected CodeTranslationFailed, got %v (%v)", berrors.CodeOf(err), err)
	}

	rows, err := messages.LastN(ctx, tx, conn.ConnectionID, 10)
	if err != nil {
		t.Fatalf("LastN: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no message persisted after a translation failure, got %d", len(rows))
	}
	if len(transport.Sent()) != 0 {
		t.Fatal("expected no delivery attempt after a translation failure")
	}
}

func TestMessagingService_DeliverText_WorkerWrongSlot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	users := userrepo.NewRepo(tx, log)
	managers := managerrepo.NewRepo(tx, log)
	workers := workerrepo.NewRepo(tx, log)
	conns := connectionrepo.NewRepo(tx, log)
	messages := messagerepo.NewRepo(tx, log)
	subs := subscriptionrepo.NewRepo(tx, log)
	usg := usagerepo.NewRepo(tx, log)

	identitySvc := identity.NewService(tx, users, managers, workers, conns, log)
	connectionSvc := connection.NewService(tx, conns, managers, workers, log)
	subscriptionSvc := subscription.NewService(tx, subs, log)
	usageSvc := usage.NewService(tx, usg, log)

	tr := &fakeTranslator{}
	transport := chattransport.NewInMemory()
	svc := NewService(tx, messages, users, managers, identitySvc, connectionSvc, subscriptionSvc, usageSvc, tr, transport, Config{FreeLimit: 3}, log)

	mgr := testutil.SeedManager(t, ctx, tx, "BRIDGE-10006")
	worker := testutil.SeedWorker(t, ctx, tx)
	testutil.SeedConnection(t, ctx, tx, mgr.ManagerID, worker.WorkerID, 2)

	_, err := svc.DeliverText(ctx, worker.WorkerID, 1, "hello")
	if err == nil {
		t.Fatal("expected a wrong-slot error")
	}
	if berrors.CodeOf(err) != berrors.CodeWrongSlot {
		t.Fatalf("expected CodeWrongSlot, got %v (%v)", berrors.CodeOf(err), err)
	}
}
