package repository

import (
	"context"
	"testing"

	"campus_essentials/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_Transition(t *testing.T) {
	db := requireDB(t)
	repo := NewOrderRepository(db)
	listings := NewListingRepository(db)
	ctx := context.Background()

	seller := createUser(t, db, "order-seller")
	buyer := createUser(t, db, "order-buyer")
	listing := createListing(t, db, seller, "bicycle", "Other", 2500)

	order := &models.Order{
		Reference: uuid.New(),
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		Amount:    decimal.NewFromInt(2500),
		Currency:  "thb",
		Status:    models.OrderCreated,
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.AttachCharge(ctx, order.ID, "chrg_test_1", ""))

	byCharge, err := repo.GetByChargeID(ctx, "chrg_test_1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byCharge.ID)

	changed, err := repo.Transition(ctx, order.ID, models.OrderPaid, "")
	require.NoError(t, err)
	assert.True(t, changed)

	// Once paid, a late failure does not override it.
	changed, err = repo.Transition(ctx, order.ID, models.OrderFailed, "insufficient_fund")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)

	sold, err := listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, sold.IsSold)

	_, err = repo.Transition(ctx, 999999, models.OrderPaid, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
