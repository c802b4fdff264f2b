package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SubscriptionStatusFree      = "free"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusPaused    = "paused"
)

// Subscription is mutated exclusively by the webhook receiver (spec §4.8);
// no other code path may write Status/EndsAt/RenewsAt directly.
type Subscription struct {
	SubscriptionID     int64          `gorm:"column:subscription_id;primaryKey" json:"subscription_id"`
	ManagerID          int64          `gorm:"column:manager_id;not null;unique" json:"manager_id"`
	ExternalID         *string        `gorm:"column:external_id" json:"external_id,omitempty"`
	Status             string         `gorm:"column:status;not null;default:'free'" json:"status"`
	CustomerPortalURL  *string        `gorm:"column:customer_portal_url" json:"customer_portal_url,omitempty"`
	RenewsAt           *time.Time     `gorm:"column:renews_at" json:"renews_at,omitempty"`
	EndsAt             *time.Time     `gorm:"column:ends_at" json:"ends_at,omitempty"`
	Metadata           datatypes.JSON `gorm:"column:metadata;type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

// Entitlement is the effective billing state derived by §4.8's table —
// never persisted, always recomputed from (Status, EndsAt, now).
type Entitlement string

const (
	Entitled    Entitlement = "entitled"
	NotEntitled Entitlement = "not_entitled"
)

// Effective implements spec §4.8's table and P5 (a pure function of
// (status, ends_at, now)). A nil Subscription (no row) is not entitled.
func Effective(sub *Subscription, now time.Time) Entitlement {
	if sub == nil {
		return NotEntitled
	}
	switch sub.Status {
	case SubscriptionStatusActive:
		return Entitled
	case SubscriptionStatusCancelled:
		if sub.EndsAt != nil && sub.EndsAt.After(now) {
			return Entitled
		}
		return NotEntitled
	default: // paused, expired, free
		return NotEntitled
	}
}
