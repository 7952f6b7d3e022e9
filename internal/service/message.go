package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SendMessageInput struct {
	To   *uint  `json:"to"`
	Text string `json:"text"`
}

type MessageService struct {
	convs    ConversationRepository
	messages MessageRepository
	notifier Notifier
	log      *slog.Logger
}

func NewMessageService(convs ConversationRepository, messages MessageRepository, notifier Notifier, log *slog.Logger) *MessageService {
	return &MessageService{convs: convs, messages: messages, notifier: notifier, log: log}
}

func (s *MessageService) member(ctx context.Context, callerID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err, apperr.ErrConversationNotFound, "could not load conversation")
	}
	if !conv.HasMember(callerID) {
		return nil, apperr.ErrNotMember
	}
	return conv, nil
}

// Send appends a message and then pushes it to the other members' open
// channels. Push is best effort; the stored message is the record.
func (s *MessageService) Send(ctx context.Context, callerID, conversationID uint, in SendMessageInput) (*models.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.Int64("conversation.id", int64(conversationID)),
		attribute.Int64("user.id", int64(callerID)),
	))
	defer span.End()

	conv, err := s.member(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, apperr.ErrMessageTooLong
	}

	recipient, err := pickRecipient(conv, callerID, in.To)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       callerID,
		RecipientID:    recipient,
		Text:           text,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		span.RecordError(err)
		return nil, storeError(err, apperr.ErrConversationNotFound, "could not store message")
	}

	payload := models.NewMessagePayload{ConversationID: conv.ID, Msg: msg}
	delivered := 0
	for _, uid := range conv.OtherMembers(callerID) {
		delivered += s.notifier.NotifyUser(uid, models.EventNewMessage, payload)
	}
	span.SetAttributes(attribute.Int("message.deliveries", delivered))
	s.log.Debug("message stored", "message_id", msg.ID, "conversation_id", conv.ID, "deliveries", delivered)

	return msg, nil
}

func pickRecipient(conv *models.Conversation, callerID uint, to *uint) (uint, error) {
	if to != nil {
		if *to == callerID || !conv.HasMember(*to) {
			return 0, apperr.ErrInvalidRecipient
		}
		return *to, nil
	}
	others := conv.OtherMembers(callerID)
	if len(others) == 0 {
		return 0, apperr.ErrInvalidRecipient
	}
	return others[0], nil
}

// History returns every message of the conversation, oldest first.
func (s *MessageService) History(ctx context.Context, callerID, conversationID uint) ([]models.Message, error) {
	if _, err := s.member(ctx, callerID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, storeError(err, apperr.ErrConversationNotFound, "could not load messages")
	}
	return messages, nil
}
