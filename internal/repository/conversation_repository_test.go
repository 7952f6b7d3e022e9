package repository

import (
	"context"
	"sync"
	"testing"

	"campus_essentials/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_GetOrCreate(t *testing.T) {
	db := requireDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "buyer")
	b := createUser(t, db, "seller")
	listing := createListing(t, db, b, "desk", "Hostel", 900)

	t.Run("symmetric in the member pair", func(t *testing.T) {
		first, created, err := repo.GetOrCreate(ctx, a.ID, b.ID, &listing.ID)
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, first.Members, 2)
		require.NotNil(t, first.Listing)
		assert.Equal(t, "desk", first.Listing.Title)

		second, created, err := repo.GetOrCreate(ctx, b.ID, a.ID, &listing.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("listing is part of the key", func(t *testing.T) {
		withListing, _, err := repo.GetOrCreate(ctx, a.ID, b.ID, &listing.ID)
		require.NoError(t, err)
		without, _, err := repo.GetOrCreate(ctx, a.ID, b.ID, nil)
		require.NoError(t, err)
		assert.NotEqual(t, withListing.ID, without.ID)
		assert.Nil(t, without.ListingID)
	})

	t.Run("concurrent calls converge on one conversation", func(t *testing.T) {
		c := createUser(t, db, "racer-a")
		d := createUser(t, db, "racer-b")

		const workers = 16
		ids := make([]uint, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				x, y := c.ID, d.ID
				if i%2 == 1 {
					x, y = y, x
				}
				conv, _, err := repo.GetOrCreate(ctx, x, y, nil)
				errs[i] = err
				if conv != nil {
					ids[i] = conv.ID
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}

		var count int64
		require.NoError(t, db.Model(&models.Conversation{}).
			Where("pair_key = ?", models.ConversationKey(c.ID, d.ID, nil)).
			Count(&count).Error)
		assert.EqualValues(t, 1, count)

		var members int64
		require.NoError(t, db.Model(&models.ConversationMember{}).Where("conversation_id = ?", ids[0]).Count(&members).Error)
		assert.EqualValues(t, 2, members)
	})
}

func TestConversationRepository_ListForUser(t *testing.T) {
	db := requireDB(t)
	repo := NewConversationRepository(db)
	msgs := NewMessageRepository(db)
	ctx := context.Background()

	me := createUser(t, db, "me")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	book := createListing(t, db, alice, "Algorithms book", "Books", 300)

	withAlice, _, err := repo.GetOrCreate(ctx, me.ID, alice.ID, &book.ID)
	require.NoError(t, err)
	withBob, _, err := repo.GetOrCreate(ctx, me.ID, bob.ID, nil)
	require.NoError(t, err)

	// Activity in the older conversation moves it to the top.
	require.NoError(t, msgs.Append(ctx, &models.Message{
		ConversationID: withAlice.ID, SenderID: alice.ID, RecipientID: me.ID, Text: "still available",
	}))

	list, err := repo.ListForUser(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, withAlice.ID, list[0].ID)
	assert.Equal(t, "alice", list[0].OtherUserName)
	assert.Equal(t, "Algorithms book", list[0].ListingTitle)
	assert.Equal(t, withBob.ID, list[1].ID)
	assert.Equal(t, "bob", list[1].OtherUserName)
	assert.Empty(t, list[1].ListingTitle)

	_, err = repo.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}
