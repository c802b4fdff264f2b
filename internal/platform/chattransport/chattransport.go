// Package chattransport abstracts the per-bot-slot outbound delivery
// channel (spec §4.4 step 5, §6 "five cooperating bot front-ends").
// This module ships only the InMemory implementation; no per-slot
// chat-platform adapter is included.
package chattransport

import "context"

// Transport delivers one already-translated message to a recipient on a
// specific bot slot. Delivery failures never roll back a persisted
// Message row (spec §4.4 step 5) — the caller only logs them.
type Transport interface {
	Send(ctx context.Context, botSlot int, recipientUserID int64, text string) error
}
