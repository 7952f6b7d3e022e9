package service

import (
	"context"
	"log/slog"

	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type StartConversationInput struct {
	OtherUserID uint  `json:"otherUserId"`
	ListingID   *uint `json:"listingId"`
}

type MemberStatus struct {
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	IsOnline bool   `json:"is_online"`
}

type ConversationService struct {
	convs    ConversationRepository
	users    UserRepository
	listings ListingRepository
	presence Presence
	log      *slog.Logger
}

func NewConversationService(convs ConversationRepository, users UserRepository, listings ListingRepository, presence Presence, log *slog.Logger) *ConversationService {
	return &ConversationService{convs: convs, users: users, listings: listings, presence: presence, log: log}
}

// Start returns the conversation between the caller and another user about
// an optional listing, creating it on first contact.
func (s *ConversationService) Start(ctx context.Context, callerID uint, in StartConversationInput) (*models.Conversation, bool, error) {
	ctx, span := tracer.Start(ctx, "ConversationService.Start", trace.WithAttributes(
		attribute.Int64("user.id", int64(callerID)),
		attribute.Int64("other_user.id", int64(in.OtherUserID)),
	))
	defer span.End()

	if in.OtherUserID == 0 {
		return nil, false, apperr.InvalidArg("otherUserId is required")
	}
	if in.OtherUserID == callerID {
		return nil, false, apperr.ErrSelfConversation
	}
	if _, err := s.users.GetByID(ctx, in.OtherUserID); err != nil {
		return nil, false, storeError(err, apperr.ErrUserNotFound, "could not load user")
	}
	if in.ListingID != nil {
		if *in.ListingID == 0 {
			in.ListingID = nil
		} else if _, err := s.listings.GetByID(ctx, *in.ListingID); err != nil {
			return nil, false, storeError(err, apperr.ErrListingNotFound, "could not load listing")
		}
	}

	conv, created, err := s.convs.GetOrCreate(ctx, callerID, in.OtherUserID, in.ListingID)
	if err != nil {
		span.RecordError(err)
		return nil, false, storeError(err, apperr.ErrConversationNotFound, "could not start conversation")
	}
	if created {
		s.log.Info("conversation created", "conversation_id", conv.ID, "listing_id", in.ListingID)
	}
	return conv, created, nil
}

func (s *ConversationService) List(ctx context.Context, callerID uint) ([]models.ConversationSummary, error) {
	list, err := s.convs.ListForUser(ctx, callerID)
	if err != nil {
		return nil, storeError(err, apperr.ErrConversationNotFound, "could not list conversations")
	}
	return list, nil
}

// Meta returns the conversation with its members. Non-members are refused.
func (s *ConversationService) Meta(ctx context.Context, callerID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err, apperr.ErrConversationNotFound, "could not load conversation")
	}
	if !conv.HasMember(callerID) {
		return nil, apperr.ErrNotMember
	}
	return conv, nil
}

// Status reports which members currently hold an open realtime channel.
func (s *ConversationService) Status(ctx context.Context, callerID, conversationID uint) ([]MemberStatus, error) {
	conv, err := s.Meta(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	statuses := make([]MemberStatus, 0, len(conv.Members))
	for _, m := range conv.Members {
		st := MemberStatus{UserID: m.UserID, IsOnline: s.presence.IsUserOnline(m.UserID)}
		if m.User != nil {
			st.Name = m.User.Name
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
