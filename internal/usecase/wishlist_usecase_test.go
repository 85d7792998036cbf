package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func newWishlistFixture(t *testing.T) (*WishlistUsecase, *CartUsecase, *recordingTracker) {
	t.Helper()
	backend := newFakeBackend()
	backend.addProduct(shirt())
	backend.addProduct(mug())
	tracker := &recordingTracker{}
	registry := newTestRegistry(backend)
	cartUC := NewCartUsecase(registry, backend, backend, tracker, 10)
	return NewWishlistUsecase(registry, backend, cartUC, tracker), cartUC, tracker
}

func TestWishlistUsecase_AddIsIdempotent(t *testing.T) {
	uc, _, tracker := newWishlistFixture(t)
	ctx := context.Background()

	_, err := uc.AddToWishlist(ctx, "sid-1", "mug", nil)
	require.NoError(t, err)
	snap, err := uc.AddToWishlist(ctx, "sid-1", "mug", nil)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, 1, snap.Count, "wishlist counts entries")
	assert.Len(t, tracker.wishlists, 1)
	assert.True(t, uc.IsInWishlist(ctx, "sid-1", "mug", nil))
}

func TestWishlistUsecase_SelectionOptionalButValidated(t *testing.T) {
	uc, _, _ := newWishlistFixture(t)
	ctx := context.Background()

	_, err := uc.AddToWishlist(ctx, "sid-1", "shirt", nil)
	require.NoError(t, err)

	_, err = uc.AddToWishlist(ctx, "sid-1", "shirt", domain.Variants{"color": "purple"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	snap, err := uc.AddToWishlist(ctx, "sid-1", "shirt", domain.Variants{"color": "red", "size": "M"})
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestWishlistUsecase_Remove(t *testing.T) {
	uc, _, _ := newWishlistFixture(t)
	ctx := context.Background()

	_, err := uc.AddToWishlist(ctx, "sid-1", "mug", nil)
	require.NoError(t, err)

	snap := uc.RemoveFromWishlist(ctx, "sid-1", "mug", nil)
	assert.Empty(t, snap.Items)
	assert.False(t, uc.IsInWishlist(ctx, "sid-1", "mug", nil))
}

func TestWishlistUsecase_MoveToCart(t *testing.T) {
	uc, cartUC, _ := newWishlistFixture(t)
	ctx := context.Background()
	red := domain.Variants{"color": "red", "size": "M"}

	_, err := uc.AddToWishlist(ctx, "sid-1", "shirt", red)
	require.NoError(t, err)

	cart, wishlist, err := uc.MoveToCart(ctx, "sid-1", "shirt", red)
	require.NoError(t, err)

	assert.Empty(t, wishlist.Items)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Variants.Equal(red))
	assert.Equal(t, 1, cartUC.GetCart(ctx, "sid-1").Count)
}

func TestWishlistUsecase_MoveToCartKeepsLineOnFailure(t *testing.T) {
	uc, _, _ := newWishlistFixture(t)
	ctx := context.Background()

	// No selection: the cart needs one for a product with variants.
	_, err := uc.AddToWishlist(ctx, "sid-1", "shirt", nil)
	require.NoError(t, err)

	_, _, err = uc.MoveToCart(ctx, "sid-1", "shirt", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, uc.IsInWishlist(ctx, "sid-1", "shirt", nil))

	_, _, err = uc.MoveToCart(ctx, "sid-1", "mug", nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
