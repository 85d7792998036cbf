package usecase

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func fakeAddress() domain.Address {
	return domain.Address{
		Label:       "Home",
		FirstName:   gofakeit.FirstName(),
		LastName:    gofakeit.LastName(),
		Phone:       gofakeit.Phone(),
		AddressLine: gofakeit.Street(),
		City:        gofakeit.City(),
		PostalCode:  gofakeit.Zip(),
		Country:     "bd",
	}
}

func TestAccountUsecase_RequiresSignIn(t *testing.T) {
	uc := NewAccountUsecase(newFakeBackend())
	ctx := context.Background()

	_, err := uc.MyOrders(ctx)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.SaveAddress(ctx, fakeAddress())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorIs(t, uc.DeleteAddress(ctx, "a"), domain.ErrUnauthorized)
	_, err = uc.AddReview(ctx, domain.Review{ProductID: "p", Rating: 5})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.OpenTicket(ctx, domain.Ticket{Subject: "s", Message: "m"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAccountUsecase_MyOrdersNeverNil(t *testing.T) {
	uc := NewAccountUsecase(newFakeBackend())

	orders, err := uc.MyOrders(buyerCtx())
	require.NoError(t, err)
	assert.NotNil(t, orders)
}

func TestAccountUsecase_SaveAddress(t *testing.T) {
	backend := newFakeBackend()
	uc := NewAccountUsecase(backend)

	saved, err := uc.SaveAddress(buyerCtx(), fakeAddress())
	require.NoError(t, err)
	assert.Equal(t, "addr-1", saved.ID)
	require.Len(t, backend.addresses, 1)
	assert.Equal(t, "user-1", backend.addresses[0].UserID)
	assert.Equal(t, "BD", backend.addresses[0].Country)

	bad := fakeAddress()
	bad.Phone = ""
	_, err = uc.SaveAddress(buyerCtx(), bad)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.Message(err), "Phone")
}

func TestAccountUsecase_DeleteAddress(t *testing.T) {
	uc := NewAccountUsecase(newFakeBackend())

	require.NoError(t, uc.DeleteAddress(buyerCtx(), "addr-1"))
	require.ErrorIs(t, uc.DeleteAddress(buyerCtx(), ""), domain.ErrInvalidInput)
	require.ErrorIs(t, uc.DeleteAddress(buyerCtx(), "missing"), domain.ErrRejected)
}

func TestAccountUsecase_AddReview(t *testing.T) {
	backend := newFakeBackend()
	uc := NewAccountUsecase(backend)

	review, err := uc.AddReview(buyerCtx(), domain.Review{ProductID: "mug", Rating: 4, Comment: "  solid  "})
	require.NoError(t, err)
	assert.Equal(t, "rev-1", review.ID)
	assert.Equal(t, "solid", backend.reviews[0].Comment)

	for _, rating := range []int{0, 6} {
		_, err = uc.AddReview(buyerCtx(), domain.Review{ProductID: "mug", Rating: rating})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "rating %d", rating)
	}
}

func TestAccountUsecase_OpenTicket(t *testing.T) {
	backend := newFakeBackend()
	uc := NewAccountUsecase(backend)

	ticket, err := uc.OpenTicket(buyerCtx(), domain.Ticket{Subject: "Late delivery", Message: gofakeit.Sentence(12)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "user-1", backend.tickets[0].UserID)

	_, err = uc.OpenTicket(buyerCtx(), domain.Ticket{Subject: "no body"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
