package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/snapshot"
	"storefront/internal/session"
)

// fakeBackend serves an in-memory catalog and records mutations.
type fakeBackend struct {
	mu         sync.Mutex
	products   map[string]*domain.Product
	shops      []domain.Shop
	promotions []domain.Promotion
	coupons    map[string]domain.Coupon
	orderErr   error
	orderFail  string
	orders     []domain.OrderRequest
	reviews    []domain.Review
	addresses  []domain.Address
	tickets    []domain.Ticket
	getCalls   int
	promoCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[string]*domain.Product{},
		coupons:  map[string]domain.Coupon{},
	}
}

func (f *fakeBackend) addProduct(p domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = &p
}

func (f *fakeBackend) ListProducts(_ context.Context, filter domain.ListingFilter) (domain.Page[domain.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.Product
	for _, p := range f.products {
		items = append(items, *p)
	}
	return domain.NewPage(items, filter.Page, filter.Limit, int64(len(items))), nil
}

func (f *fakeBackend) ListShops(_ context.Context, filter domain.ListingFilter) (domain.Page[domain.Shop], error) {
	return domain.NewPage(f.shops, filter.Page, filter.Limit, int64(len(f.shops))), nil
}

func (f *fakeBackend) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	p, ok := f.products[id]
	if !ok {
		return nil, domain.NotFound("product")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeBackend) ListPromotions(context.Context) ([]domain.Promotion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promoCalls++
	return f.promotions, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, req domain.OrderRequest) (domain.MutationResult[domain.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return domain.MutationResult[domain.Order]{}, f.orderErr
	}
	if f.orderFail != "" {
		return domain.Failed[domain.Order](f.orderFail), nil
	}
	f.orders = append(f.orders, req)
	return domain.Succeeded(domain.Order{
		ID:            "ord-1",
		UserID:        req.UserID,
		Status:        domain.OrderStatusPending,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		TotalAmount:   req.Total,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Items:         req.Items,
	}), nil
}

func (f *fakeBackend) ListOrders(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeBackend) ValidateCoupon(_ context.Context, code string) (domain.MutationResult[domain.Coupon], error) {
	c, ok := f.coupons[code]
	if !ok {
		return domain.Failed[domain.Coupon]("Invalid coupon code"), nil
	}
	return domain.Succeeded(c), nil
}

func (f *fakeBackend) CreateReview(_ context.Context, r domain.Review) (domain.MutationResult[domain.Review], error) {
	f.reviews = append(f.reviews, r)
	r.ID = "rev-1"
	return domain.Succeeded(r), nil
}

func (f *fakeBackend) SaveAddress(_ context.Context, a domain.Address) (domain.MutationResult[domain.Address], error) {
	f.addresses = append(f.addresses, a)
	a.ID = "addr-1"
	return domain.Succeeded(a), nil
}

func (f *fakeBackend) DeleteAddress(_ context.Context, _, id string) (domain.MutationResult[domain.Address], error) {
	if id == "missing" {
		return domain.Failed[domain.Address]("address not found"), nil
	}
	return domain.Succeeded(domain.Address{ID: id}), nil
}

func (f *fakeBackend) OpenTicket(_ context.Context, t domain.Ticket) (domain.MutationResult[domain.Ticket], error) {
	f.tickets = append(f.tickets, t)
	t.ID = "tkt-1"
	return domain.Succeeded(t), nil
}

var _ domain.Backend = (*fakeBackend)(nil)

// recordingTracker captures conversion events synchronously.
type recordingTracker struct {
	mu        sync.Mutex
	carts     []domain.LineItem
	wishlists []domain.LineItem
	purchases []*domain.Order
}

func (r *recordingTracker) TrackAddToCart(_ context.Context, _ string, item domain.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = append(r.carts, item)
}

func (r *recordingTracker) TrackAddToWishlist(_ context.Context, _ string, item domain.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wishlists = append(r.wishlists, item)
}

func (r *recordingTracker) TrackPurchase(_ context.Context, _ string, order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases = append(r.purchases, order)
}

func newTestRegistry(backend domain.Catalog) *session.Registry {
	return session.NewRegistry(cache.NewMemoryCache(time.Minute, time.Minute), snapshot.NewMemoryStore(), backend, 20, time.Minute)
}

func shirt() domain.Product {
	return domain.Product{
		ID:    "shirt",
		Name:  "Linen Shirt",
		Price: decimal.RequireFromString("20.00"),
		Stock: 10,
		Variants: []domain.Variant{
			{ID: "v-red-m", Color: "red", Size: "M", Stock: 3, PriceAdjustment: decimal.Zero},
			{ID: "v-blue-l", Color: "blue", Size: "L", Stock: 5, PriceAdjustment: decimal.RequireFromString("2.50")},
		},
	}
}

func mug() domain.Product {
	return domain.Product{
		ID:    "mug",
		Name:  "Mug",
		Price: decimal.RequireFromString("8.00"),
		Stock: 50,
	}
}

func buyerCtx() context.Context {
	return auth.NewContext(context.Background(), &auth.Identity{UserID: "user-1", Email: "a@example.com", Role: auth.RoleBuyer})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !dec(want).Equal(got) {
		t.Fatalf("want %s, got %s", want, got)
	}
}
