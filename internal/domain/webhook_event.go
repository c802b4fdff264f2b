package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEvent is an append-only audit ledger of every authenticated
// billing event (spec §4.9, §8 P6). The idempotency tuple
// (manager_id, event_kind, external_id, event_timestamp) is unique; a
// replay is detected by this row existing already and short-circuits
// before Subscription is touched at all. Unlike the platform-identity
// keyed core tables this uses a surrogate uuid, because it's an audit
// trail, not a relational entity with its own lifecycle.
type WebhookEvent struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ManagerID      int64          `gorm:"column:manager_id;not null;index:idx_webhook_event_idempotency,unique,priority:1" json:"manager_id"`
	EventKind      string         `gorm:"column:event_kind;not null;index:idx_webhook_event_idempotency,unique,priority:2" json:"event_kind"`
	ExternalID     string         `gorm:"column:external_id;not null;index:idx_webhook_event_idempotency,unique,priority:3" json:"external_id"`
	EventTimestamp time.Time      `gorm:"column:event_timestamp;not null;index:idx_webhook_event_idempotency,unique,priority:4" json:"event_timestamp"`
	RawPayload     datatypes.JSON `gorm:"column:raw_payload;type:jsonb;not null;default:'{}'" json:"raw_payload"`
	ReceivedAt     time.Time      `gorm:"column:received_at;not null;default:now()" json:"received_at"`
}

func (WebhookEvent) TableName() string { return "webhook_event" }
