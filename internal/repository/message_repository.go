package repository

import (
	"context"
	"time"

	"campus_essentials/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

// Append stores msg with a created_at strictly later than any earlier
// message of the same conversation and bumps the conversation's updated_at.
// The conversation row is locked for the duration so concurrent appends
// to one conversation are serialized.
func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&conv, msg.ConversationID).Error; err != nil {
			return err
		}

		var last []time.Time
		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ?", msg.ConversationID).
			Order("created_at DESC, id DESC").
			Limit(1).
			Pluck("created_at", &last).Error; err != nil {
			return err
		}

		// Postgres keeps microseconds.
		ts := r.now().UTC().Truncate(time.Microsecond)
		if len(last) > 0 && !ts.After(last[0]) {
			ts = last[0].UTC().Add(time.Microsecond)
		}
		msg.CreatedAt = ts

		if err := tx.Omit("Conversation").Create(msg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			UpdateColumn("updated_at", ts).Error
	})
	return translate(err, "messageRepo.Append")
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, translate(err, "messageRepo.ListByConversation")
	}
	return messages, nil
}
