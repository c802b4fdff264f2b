package domain

import "time"

const (
	ConnectionStatusActive       = "active"
	ConnectionStatusDisconnected = "disconnected"
)

// Connection binds one Manager to one Worker on one bot slot. Its two
// hard invariants (spec §3, P1) are enforced by partial unique indexes,
// never by application logic:
//
//	UNIQUE(manager_id, bot_slot) WHERE status = 'active'
//	UNIQUE(worker_id)            WHERE status = 'active'
//
// Disconnection is always an UPDATE (status + disconnected_at); rows are
// never deleted, so Message/Task history stays intact after unbind.
type Connection struct {
	ConnectionID   int64      `gorm:"column:connection_id;primaryKey" json:"connection_id"`
	ManagerID      int64      `gorm:"column:manager_id;not null;index" json:"manager_id"`
	WorkerID       int64      `gorm:"column:worker_id;not null;index" json:"worker_id"`
	BotSlot        int        `gorm:"column:bot_slot;not null" json:"bot_slot"`
	Status         string     `gorm:"column:status;not null;default:'active'" json:"status"`
	ConnectedAt    time.Time  `gorm:"column:connected_at;not null;default:now()" json:"connected_at"`
	DisconnectedAt *time.Time `gorm:"column:disconnected_at" json:"disconnected_at,omitempty"`
}

func (Connection) TableName() string { return "connection" }

func (c *Connection) IsActive() bool { return c != nil && c.Status == ConnectionStatusActive }

// HasParticipant reports whether userID is either endpoint of c, the
// check behind spec P2 (every Message's sender_id is one of the
// connection's two endpoints).
func (c *Connection) HasParticipant(userID int64) bool {
	return c != nil && (c.ManagerID == userID || c.WorkerID == userID)
}
