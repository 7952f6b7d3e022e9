package models

import (
	"time"
)

const MaxMessageLength = 2000

type Message struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConversationID uint `gorm:"not null;index:idx_messages_conversation_created,priority:1" json:"conversation"`
	SenderID       uint `gorm:"not null;index" json:"from"`
	RecipientID    uint `gorm:"not null" json:"to"`

	Text string `gorm:"type:text;not null" json:"text"`

	// Assigned by the store, strictly increasing within a conversation.
	CreatedAt time.Time `gorm:"not null;index:idx_messages_conversation_created,priority:2" json:"created_at"`

	// Relations
	Conversation *Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}
