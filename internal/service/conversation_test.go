package service_test

import (
	"context"
	"testing"

	"campus_essentials/internal/repository"
	"campus_essentials/internal/service"
	"campus_essentials/internal/service/mocks"
	"campus_essentials/models"
	appErrors "campus_essentials/pkg/errors"
	"campus_essentials/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationDeps struct {
	convs    *mocks.MockConversationRepository
	users    *mocks.MockUserRepository
	listings *mocks.MockListingRepository
	presence *mocks.MockPresence
}

func newConversations(t *testing.T) (*service.ConversationService, conversationDeps) {
	ctrl := gomock.NewController(t)
	d := conversationDeps{
		convs:    mocks.NewMockConversationRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		listings: mocks.NewMockListingRepository(ctrl),
		presence: mocks.NewMockPresence(ctrl),
	}
	return service.NewConversationService(d.convs, d.users, d.listings, d.presence, logger.Discard()), d
}

func twoMemberConversation(id, a, b uint) *models.Conversation {
	return &models.Conversation{
		ID: id,
		Members: []models.ConversationMember{
			{ConversationID: id, UserID: a, User: &models.User{ID: a, Name: "A"}},
			{ConversationID: id, UserID: b, User: &models.User{ID: b, Name: "B"}},
		},
	}
}

func TestConversationService_Start(t *testing.T) {
	ctx := context.Background()
	listingID := uint(9)

	t.Run("happy path - created with listing", func(t *testing.T) {
		svc, d := newConversations(t)
		d.users.EXPECT().GetByID(gomock.Any(), uint(2)).Return(&models.User{ID: 2}, nil)
		d.listings.EXPECT().GetByID(gomock.Any(), listingID).Return(&models.Listing{ID: listingID}, nil)
		d.convs.EXPECT().GetOrCreate(gomock.Any(), uint(1), uint(2), &listingID).Return(twoMemberConversation(5, 1, 2), true, nil)

		conv, created, err := svc.Start(ctx, 1, service.StartConversationInput{OtherUserID: 2, ListingID: &listingID})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, uint(5), conv.ID)
	})

	t.Run("cannot talk to yourself", func(t *testing.T) {
		svc, _ := newConversations(t)
		_, _, err := svc.Start(ctx, 1, service.StartConversationInput{OtherUserID: 1})
		assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, d := newConversations(t)
		d.users.EXPECT().GetByID(gomock.Any(), uint(2)).Return(nil, repository.ErrNotFound)

		_, _, err := svc.Start(ctx, 1, service.StartConversationInput{OtherUserID: 2})
		assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
	})

	t.Run("unknown listing", func(t *testing.T) {
		svc, d := newConversations(t)
		d.users.EXPECT().GetByID(gomock.Any(), uint(2)).Return(&models.User{ID: 2}, nil)
		d.listings.EXPECT().GetByID(gomock.Any(), listingID).Return(nil, repository.ErrNotFound)

		_, _, err := svc.Start(ctx, 1, service.StartConversationInput{OtherUserID: 2, ListingID: &listingID})
		assert.ErrorIs(t, err, appErrors.ErrListingNotFound)
	})
}

func TestConversationService_MetaAndStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("non-member is forbidden", func(t *testing.T) {
		svc, d := newConversations(t)
		d.convs.EXPECT().GetByID(gomock.Any(), uint(5)).Return(twoMemberConversation(5, 1, 2), nil)

		_, err := svc.Meta(ctx, 3, 5)
		assert.Equal(t, appErrors.CodePermissionDenied, appErrors.CodeOf(err))
	})

	t.Run("missing conversation", func(t *testing.T) {
		svc, d := newConversations(t)
		d.convs.EXPECT().GetByID(gomock.Any(), uint(5)).Return(nil, repository.ErrNotFound)

		_, err := svc.Meta(ctx, 1, 5)
		assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
	})

	t.Run("status reports presence per member", func(t *testing.T) {
		svc, d := newConversations(t)
		d.convs.EXPECT().GetByID(gomock.Any(), uint(5)).Return(twoMemberConversation(5, 1, 2), nil)
		d.presence.EXPECT().IsUserOnline(uint(1)).Return(true)
		d.presence.EXPECT().IsUserOnline(uint(2)).Return(false)

		statuses, err := svc.Status(ctx, 1, 5)
		require.NoError(t, err)
		require.Len(t, statuses, 2)
		assert.True(t, statuses[0].IsOnline)
		assert.False(t, statuses[1].IsOnline)
		assert.Equal(t, "B", statuses[1].Name)
	})
}
