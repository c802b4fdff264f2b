package chattransport

import (
	"context"
	"sync"
)

// Sent records one call into an InMemory transport, for assertions in
// service-level tests that don't need a real chat-platform connection.
type Sent struct {
	BotSlot         int
	RecipientUserID int64
	Text            string
}

// InMemory is the transport interface's test double (spec §0: "in-memory
// double" alongside the real platform adapter, which is out of scope).
type InMemory struct {
	mu   sync.Mutex
	sent []Sent
	Fail error
}

func NewInMemory() *InMemory { return &InMemory{} }

func (t *InMemory) Send(ctx context.Context, botSlot int, recipientUserID int64, text string) error {
	if t.Fail != nil {
		return t.Fail
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, Sent{BotSlot: botSlot, RecipientUserID: recipientUserID, Text: text})
	return nil
}

func (t *InMemory) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sent, len(t.sent))
	copy(out, t.sent)
	return out
}
