// Package billing implements the webhook-authenticity and event-parsing
// half of spec §4.9: HMAC verification of the raw request body and
// extraction of (event_kind, subscription_external_id, custom_fields).
// The UPSERT/transition logic itself lives in services/subscription and
// services/webhook — this package only parses and authenticates.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Event is the normalized shape of a billing provider webhook payload,
// per spec §4.9's "(event_kind, subscription_external_id, custom_fields)".
type Event struct {
	Kind           string
	ExternalID     string
	ManagerID      int64
	Timestamp      time.Time
	CheckoutURL    string
	CustomerPortal string
	RenewsAt       *time.Time
	EndsAt         *time.Time
	Raw            json.RawMessage
}

type rawPayload struct {
	EventKind      string `json:"event_kind"`
	SubscriptionID string `json:"subscription_id"`
	OccurredAt     string `json:"occurred_at"`
	CustomerPortal string `json:"customer_portal_url"`
	RenewsAt       string `json:"renews_at"`
	EndsAt         string `json:"ends_at"`
	CustomFields   struct {
		ManagerID int64 `json:"manager_id"`
	} `json:"custom_fields"`
}

// VerifySignature checks an HMAC-SHA256 hex-encoded tag over body using a
// constant-time comparison (spec §4.9: "fail verification -> 401, no side
// effects").
func VerifySignature(secret, body []byte, signatureHex string) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := mac.Sum(nil)
	got, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// ParseEvent extracts the routing key (custom_fields.manager_id is
// mandatory per §4.9) and normalizes timestamps. It does not classify the
// event kind into a Subscription status — see services/webhook.
func ParseEvent(body []byte) (Event, error) {
	var raw rawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("parse billing webhook payload: %w", err)
	}
	if raw.CustomFields.ManagerID == 0 {
		return Event{}, fmt.Errorf("billing webhook payload missing custom_fields.manager_id")
	}
	ev := Event{
		Kind:           raw.EventKind,
		ExternalID:     raw.SubscriptionID,
		ManagerID:      raw.CustomFields.ManagerID,
		CustomerPortal: raw.CustomerPortal,
		Raw:            json.RawMessage(body),
	}
	if raw.OccurredAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.OccurredAt); err == nil {
			ev.Timestamp = t
		}
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if raw.RenewsAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.RenewsAt); err == nil {
			ev.RenewsAt = &t
		}
	}
	if raw.EndsAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.EndsAt); err == nil {
			ev.EndsAt = &t
		}
	}
	return ev, nil
}

// CheckoutURLBuilder generates the checkout link surfaced on LimitReached
// (spec §7: "a freshly generated checkout URL carrying the manager ID in
// the custom-fields channel").
type CheckoutURLBuilder interface {
	BuildCheckoutURL(managerID int64) (string, error)
}
