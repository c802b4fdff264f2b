// Package bot glues a chat-platform transport binding (out of scope —
// the concrete SDK lives outside this module) to BridgeOS's services: it
// is the "per-slot bot runtime wiring" named in spec §0, the one place
// that knows about invitation-link redemption, "**" task routing, and
// plain message delivery in terms of a single inbound Update.
package bot

// Update is the transport-agnostic shape cmd/bot normalizes an inbound
// chat-platform event into before handing it to Handler.HandleUpdate.
// Whatever SDK a deployment wires up is responsible for producing this
// from its own webhook/poll payload.
type Update struct {
	// UpdateID is the chat platform's own message/update identifier,
	// checked against platform/dedup at the start of Handler.HandleUpdate.
	UpdateID string

	BotSlot int

	SenderUserID int64
	DisplayName  string
	UILanguage   string
	Gender       *string

	// Text is the inbound message payload. Empty when StartParam is set.
	Text string

	// StartParam carries the "?start=invite_BRIDGE-DDDDD" deep-link
	// payload (spec §6), empty for ordinary messages.
	StartParam string
}

// Reply is what HandleUpdate wants said back to the sender. Delivery
// through the real transport is cmd/bot's job, not this package's.
type Reply struct {
	Text string
}
