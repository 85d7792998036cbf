package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/pkg/logger"
)

// CartUsecase validates cart mutations against the catalog before applying
// them to the owner's line-item store.
type CartUsecase struct {
	sessions *session.Registry
	catalog  domain.Catalog
	coupons  domain.Coupons
	tracker  domain.ConversionTracker
	maxQty   int
	now      func() time.Time
}

func NewCartUsecase(sessions *session.Registry, catalog domain.Catalog, coupons domain.Coupons, tracker domain.ConversionTracker, maxQty int) *CartUsecase {
	return &CartUsecase{
		sessions: sessions,
		catalog:  catalog,
		coupons:  coupons,
		tracker:  trackerOrNoop(tracker),
		maxQty:   maxQty,
		now:      time.Now,
	}
}

func (u *CartUsecase) GetCart(ctx context.Context, owner string) domain.AggregateSnapshot {
	return u.sessions.Get(ctx, owner).Cart.Snapshot()
}

// AddToCart resolves the selected variant, checks stock for the combined
// quantity and adds the line at the current unit price.
func (u *CartUsecase) AddToCart(ctx context.Context, owner, productID string, quantity int, variants domain.Variants) (domain.AggregateSnapshot, error) {
	if productID == "" {
		return domain.AggregateSnapshot{}, domain.InvalidInput("product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := u.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.AggregateSnapshot{}, backendErr("catalog.GetProduct", err)
	}

	variant, err := product.ResolveVariant(variants)
	if err != nil {
		return domain.AggregateSnapshot{}, err
	}
	if variant != nil {
		variants = variant.Attributes()
	}

	store := u.sessions.Get(ctx, owner).Cart
	existing, _ := store.Get(productID, variants)
	wanted := existing.Quantity + quantity

	if u.maxQty > 0 && wanted > u.maxQty {
		return domain.AggregateSnapshot{}, domain.InvalidInput(fmt.Sprintf("maximum %d per item", u.maxQty))
	}
	stock := product.AvailableStock(variant)
	if stock <= 0 {
		return domain.AggregateSnapshot{}, domain.InvalidInput("product is out of stock")
	}
	if wanted > stock {
		return domain.AggregateSnapshot{}, domain.InvalidInput(fmt.Sprintf("only %d left in stock", stock))
	}

	item := store.Add(ctx, *product, quantity, variants)
	u.tracker.TrackAddToCart(ctx, owner, item)

	snap := store.Snapshot()
	logger.StoreMutation(ctx, string(snap.Kind), "add", productID, snap.Count)
	return snap, nil
}

// UpdateQuantity sets an existing line's quantity; zero or less removes it.
// A positive quantity is checked against the selected variant's stock.
func (u *CartUsecase) UpdateQuantity(ctx context.Context, owner, productID string, quantity int, variants domain.Variants) (domain.AggregateSnapshot, error) {
	store := u.sessions.Get(ctx, owner).Cart
	if quantity <= 0 {
		store.SetQuantity(ctx, productID, quantity, variants)
		snap := store.Snapshot()
		logger.StoreMutation(ctx, string(snap.Kind), "set_quantity", productID, snap.Count)
		return snap, nil
	}
	if u.maxQty > 0 && quantity > u.maxQty {
		return domain.AggregateSnapshot{}, domain.InvalidInput(fmt.Sprintf("maximum %d per item", u.maxQty))
	}

	product, err := u.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.AggregateSnapshot{}, backendErr("catalog.GetProduct", err)
	}
	variant, err := product.ResolveVariant(variants)
	if err != nil {
		return domain.AggregateSnapshot{}, err
	}
	if variant != nil {
		variants = variant.Attributes()
	}
	if !store.Contains(productID, variants) {
		return domain.AggregateSnapshot{}, domain.NotFound("cart item")
	}
	if stock := product.AvailableStock(variant); quantity > stock {
		if stock <= 0 {
			return domain.AggregateSnapshot{}, domain.InvalidInput("product is out of stock")
		}
		return domain.AggregateSnapshot{}, domain.InvalidInput(fmt.Sprintf("only %d left in stock", stock))
	}

	if !store.SetQuantity(ctx, productID, quantity, variants) {
		return domain.AggregateSnapshot{}, domain.NotFound("cart item")
	}
	snap := store.Snapshot()
	logger.StoreMutation(ctx, string(snap.Kind), "set_quantity", productID, snap.Count)
	return snap, nil
}

// RemoveFromCart is idempotent.
func (u *CartUsecase) RemoveFromCart(ctx context.Context, owner, productID string, variants domain.Variants) domain.AggregateSnapshot {
	store := u.sessions.Get(ctx, owner).Cart
	if store.Remove(ctx, productID, variants) {
		logger.StoreMutation(ctx, string(domain.KindCart), "remove", productID, store.Count())
	}
	return store.Snapshot()
}

func (u *CartUsecase) ClearCart(ctx context.Context, owner string) domain.AggregateSnapshot {
	store := u.sessions.Get(ctx, owner).Cart
	store.Clear(ctx)
	return store.Snapshot()
}

// PreviewCoupon quotes a coupon against the current cart total without ordering.
func (u *CartUsecase) PreviewCoupon(ctx context.Context, owner, code string) (*domain.CouponQuote, error) {
	store := u.sessions.Get(ctx, owner).Cart
	if store.Count() == 0 {
		return nil, domain.InvalidInput("cart is empty")
	}
	return quoteCoupon(ctx, u.coupons, code, store.Total(), u.now())
}

// quoteCoupon looks a code up on the backend and applies it to subtotal.
func quoteCoupon(ctx context.Context, coupons domain.Coupons, code string, subtotal decimal.Decimal, now time.Time) (*domain.CouponQuote, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, domain.InvalidInput("coupon code is required")
	}

	res, err := coupons.ValidateCoupon(ctx, code)
	if err != nil {
		return nil, backendErr("coupons.ValidateCoupon", err)
	}
	if !res.Success || res.Data == nil {
		msg := res.Error
		if msg == "" {
			msg = "invalid coupon code"
		}
		return nil, domain.InvalidInput(msg)
	}
	return res.Data.Quote(now, subtotal)
}
