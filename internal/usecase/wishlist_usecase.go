package usecase

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/pkg/logger"
)

type WishlistUsecase struct {
	sessions *session.Registry
	catalog  domain.Catalog
	cart     *CartUsecase
	tracker  domain.ConversionTracker
}

func NewWishlistUsecase(sessions *session.Registry, catalog domain.Catalog, cart *CartUsecase, tracker domain.ConversionTracker) *WishlistUsecase {
	return &WishlistUsecase{
		sessions: sessions,
		catalog:  catalog,
		cart:     cart,
		tracker:  trackerOrNoop(tracker),
	}
}

func (u *WishlistUsecase) GetWishlist(ctx context.Context, owner string) domain.AggregateSnapshot {
	return u.sessions.Get(ctx, owner).Wishlist.Snapshot()
}

// AddToWishlist saves a product once per variant selection. A selection is
// optional, but when given it must name a real variant.
func (u *WishlistUsecase) AddToWishlist(ctx context.Context, owner, productID string, variants domain.Variants) (domain.AggregateSnapshot, error) {
	if productID == "" {
		return domain.AggregateSnapshot{}, domain.InvalidInput("product id is required")
	}

	store := u.sessions.Get(ctx, owner).Wishlist
	if store.Contains(productID, variants) {
		return store.Snapshot(), nil
	}

	product, err := u.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.AggregateSnapshot{}, backendErr("catalog.GetProduct", err)
	}
	if len(variants) > 0 {
		if _, err := product.ResolveVariant(variants); err != nil {
			return domain.AggregateSnapshot{}, err
		}
	}

	item := store.Add(ctx, *product, 1, variants)
	u.tracker.TrackAddToWishlist(ctx, owner, item)
	logger.StoreMutation(ctx, string(domain.KindWishlist), "add", productID, store.Count())
	return store.Snapshot(), nil
}

func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, owner, productID string, variants domain.Variants) domain.AggregateSnapshot {
	store := u.sessions.Get(ctx, owner).Wishlist
	if store.Remove(ctx, productID, variants) {
		logger.StoreMutation(ctx, string(domain.KindWishlist), "remove", productID, store.Count())
	}
	return store.Snapshot()
}

func (u *WishlistUsecase) IsInWishlist(ctx context.Context, owner, productID string, variants domain.Variants) bool {
	return u.sessions.Get(ctx, owner).Wishlist.Contains(productID, variants)
}

// MoveToCart adds a wishlist line to the cart with its quantity and drops it
// from the wishlist once the cart accepted it.
func (u *WishlistUsecase) MoveToCart(ctx context.Context, owner, productID string, variants domain.Variants) (cart, wishlist domain.AggregateSnapshot, err error) {
	store := u.sessions.Get(ctx, owner).Wishlist
	item, ok := store.Get(productID, variants)
	if !ok {
		return domain.AggregateSnapshot{}, domain.AggregateSnapshot{}, domain.NotFound("wishlist item")
	}

	cart, err = u.cart.AddToCart(ctx, owner, item.ProductID, item.Quantity, item.Variants)
	if err != nil {
		return domain.AggregateSnapshot{}, domain.AggregateSnapshot{}, err
	}
	store.Remove(ctx, item.ProductID, item.Variants)
	return cart, store.Snapshot(), nil
}
