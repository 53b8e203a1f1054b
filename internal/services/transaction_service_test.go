package services

import (
	"context"
	"net/http"
	"testing"

	"rentshare_backend/internal/models"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_MarksOfferPaid(t *testing.T) {
	f := newFixture()
	owner := f.m.addUser("user1@gmail.com", "")
	user := f.m.addUser("user2@gmail.com", "")
	offer := f.m.addOffer(user, f.m.addListing(owner), models.OfferStatusAccepted)

	resp, err := f.transactions.CreateTransaction(context.Background(), nil, user.ID, &dto.CreateTransactionRequest{
		OfferID:   offer.ID,
		Amount:    50,
		PaymentID: "pay_123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OfferStatusPaid, f.m.offers[offer.ID].Status)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)
	assert.Equal(t, models.OfferStatusPaid, resp.Offer.Status)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, 0.0, resp.User.AverageRating)
}

func TestCreateTransaction_Rules(t *testing.T) {
	f := newFixture()
	owner := f.m.addUser("user1@gmail.com", "")
	user := f.m.addUser("user2@gmail.com", "")
	listing := f.m.addListing(owner)
	pending := f.m.addOffer(user, listing, models.OfferStatusPending)
	accepted := f.m.addOffer(user, listing, models.OfferStatusAccepted)
	ctx := context.Background()

	_, err := f.transactions.CreateTransaction(ctx, nil, user.ID, &dto.CreateTransactionRequest{OfferID: uuid.NewString(), Amount: 1})
	requireDetails(t, err, "offer_id", "Offer does not exist")

	_, err = f.transactions.CreateTransaction(ctx, nil, user.ID, &dto.CreateTransactionRequest{OfferID: pending.ID, Amount: 1})
	assert.Equal(t, apperrors.CodeInvalidStatus, requireAppError(t, err).Code)
	assert.Equal(t, models.OfferStatusPending, f.m.offers[pending.ID].Status)

	_, err = f.transactions.CreateTransaction(ctx, nil, owner.ID, &dto.CreateTransactionRequest{OfferID: accepted.ID, Amount: 1})
	assert.Equal(t, http.StatusForbidden, requireAppError(t, err).HTTPCode)
	assert.Empty(t, f.m.transactions)
}

func TestCompleteTransaction(t *testing.T) {
	f := newFixture()
	owner := f.m.addUser("user1@gmail.com", "")
	user := f.m.addUser("user2@gmail.com", "")
	offer := f.m.addOffer(user, f.m.addListing(owner), models.OfferStatusAccepted)
	ctx := context.Background()

	created, err := f.transactions.CreateTransaction(ctx, nil, user.ID, &dto.CreateTransactionRequest{OfferID: offer.ID, Amount: 50})
	require.NoError(t, err)

	_, err = f.transactions.CompleteTransaction(ctx, nil, owner.ID, created.ID)
	assert.Equal(t, apperrors.ErrInsufficientPermissions, err)

	done, err := f.transactions.CompleteTransaction(ctx, nil, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, done.Status)
	assert.Equal(t, "Completed", done.StatusDisplay)

	_, err = f.transactions.CompleteTransaction(ctx, nil, user.ID, created.ID)
	assert.Equal(t, apperrors.CodeInvalidStatus, requireAppError(t, err).Code)

	// the listing owner may read it
	_, err = f.transactions.GetTransaction(nil, owner.ID, "user", created.ID)
	assert.NoError(t, err)
}
