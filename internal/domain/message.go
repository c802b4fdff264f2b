package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Message is persisted only after a successful translation (spec §4.4
// step 5) — a failed translation leaves no row. TranslationMeta is a
// jsonb metadata column (default '{}'), in the teacher's idiom of
// attaching one to a chat row; the messaging pipeline does not fill it.
type Message struct {
	MessageID      int64          `gorm:"column:message_id;primaryKey" json:"message_id"`
	ConnectionID   int64          `gorm:"column:connection_id;not null;index:idx_message_connection_sent,priority:1" json:"connection_id"`
	SenderID       int64          `gorm:"column:sender_id;not null" json:"sender_id"`
	OriginalText   string         `gorm:"column:original_text;type:text;not null" json:"original_text"`
	TranslatedText *string        `gorm:"column:translated_text;type:text" json:"translated_text,omitempty"`
	TranslationMeta datatypes.JSON `gorm:"column:translation_meta;type:jsonb;not null;default:'{}'" json:"translation_meta,omitempty"`
	SentAt         time.Time      `gorm:"column:sent_at;not null;default:now();index:idx_message_connection_sent,priority:2" json:"sent_at"`
}

func (Message) TableName() string { return "message" }
