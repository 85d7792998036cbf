package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

type checkoutFixture struct {
	checkout *CheckoutUsecase
	cart     *CartUsecase
	backend  *fakeBackend
	tracker  *recordingTracker
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()
	backend := newFakeBackend()
	backend.addProduct(shirt())
	backend.addProduct(mug())
	tracker := &recordingTracker{}
	registry := newTestRegistry(backend)
	return checkoutFixture{
		checkout: NewCheckoutUsecase(registry, backend, backend, tracker),
		cart:     NewCartUsecase(registry, backend, backend, tracker, 10),
		backend:  backend,
		tracker:  tracker,
	}
}

func TestCheckoutUsecase_PlacesOrderAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := buyerCtx()
	f.backend.coupons["TAKE5"] = domain.Coupon{Code: "TAKE5", Type: domain.CouponTypeFixed, Value: dec("5"), IsActive: true}

	_, err := f.cart.AddToCart(ctx, "sid-1", "mug", 2, nil)
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, "sid-1", "shirt", 1, domain.Variants{"color": "blue", "size": "L"})
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "addr-1", CouponCode: "take5"})
	require.NoError(t, err)

	assert.Equal(t, "ord-1", order.ID)
	require.Len(t, f.backend.orders, 1)
	req := f.backend.orders[0]
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, domain.PaymentMethodCOD, req.PaymentMethod)
	assert.Equal(t, "TAKE5", req.CouponCode)
	assertDecimal(t, "38.50", req.Subtotal)
	assertDecimal(t, "5", req.Discount)
	assertDecimal(t, "33.50", req.Total)
	assert.Len(t, req.Items, 2)

	assert.Equal(t, 0, f.cart.GetCart(ctx, "sid-1").Count)
	assert.Len(t, f.tracker.purchases, 1)
}

func TestCheckoutUsecase_RequiresSignIn(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout(context.Background(), "sid-1", CheckoutRequest{AddressID: "a"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCheckoutUsecase_RoleMustAllowCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := auth.NewContext(context.Background(), &auth.Identity{UserID: "u", Role: auth.RoleGuest})

	_, err := f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a"})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCheckoutUsecase_Validation(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := buyerCtx()

	_, err := f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "cart is empty", domain.Message(err))

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a", PaymentMethod: "barter"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{Address: &domain.Address{City: "Dhaka"}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckoutUsecase_RejectedOrderKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := buyerCtx()
	f.backend.orderFail = "insufficient stock for Mug"

	_, err := f.cart.AddToCart(ctx, "sid-1", "mug", 1, nil)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a"})
	require.ErrorIs(t, err, domain.ErrRejected)
	assert.Equal(t, "insufficient stock for Mug", domain.Message(err))
	assert.Equal(t, 1, f.cart.GetCart(ctx, "sid-1").Count)
	assert.Empty(t, f.tracker.purchases)
}

func TestCheckoutUsecase_TransportFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := buyerCtx()
	f.backend.orderErr = errors.New("connection reset")

	_, err := f.cart.AddToCart(ctx, "sid-1", "mug", 1, nil)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a"})
	require.ErrorIs(t, err, domain.ErrRemote)
	assert.Equal(t, 1, f.cart.GetCart(ctx, "sid-1").Count)
}

func TestCheckoutUsecase_InvalidCouponStopsOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := buyerCtx()

	_, err := f.cart.AddToCart(ctx, "sid-1", "mug", 1, nil)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "a", CouponCode: "GHOST"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.backend.orders)
}

// slowOrders holds CreateOrder until release is closed.
type slowOrders struct {
	*fakeBackend
	entered chan struct{}
	release chan struct{}
}

func (s slowOrders) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.MutationResult[domain.Order], error) {
	close(s.entered)
	<-s.release
	return s.fakeBackend.CreateOrder(ctx, req)
}

func TestCheckoutUsecase_KeepsLinesAddedDuringOrder(t *testing.T) {
	backend := newFakeBackend()
	backend.addProduct(shirt())
	backend.addProduct(mug())
	registry := newTestRegistry(backend)
	orders := slowOrders{fakeBackend: backend, entered: make(chan struct{}), release: make(chan struct{})}
	checkout := NewCheckoutUsecase(registry, orders, backend, nil)
	cart := NewCartUsecase(registry, backend, backend, nil, 10)
	ctx := buyerCtx()
	red := domain.Variants{"color": "red", "size": "M"}

	_, err := cart.AddToCart(ctx, "sid-1", "mug", 2, nil)
	require.NoError(t, err)

	type result struct {
		order *domain.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := checkout.Checkout(ctx, "sid-1", CheckoutRequest{AddressID: "addr-1"})
		done <- result{order, err}
	}()
	<-orders.entered

	_, err = cart.AddToCart(ctx, "sid-1", "shirt", 1, red)
	require.NoError(t, err)
	_, err = cart.AddToCart(ctx, "sid-1", "mug", 1, nil)
	require.NoError(t, err)

	close(orders.release)
	res := <-done
	require.NoError(t, res.err)

	require.Len(t, backend.orders, 1)
	req := backend.orders[0]
	require.Len(t, req.Items, 1)
	assert.Equal(t, "mug", req.Items[0].ProductID)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assertDecimal(t, "16", req.Subtotal)

	left := cart.GetCart(ctx, "sid-1")
	require.Len(t, left.Items, 2)
	assert.Equal(t, "mug", left.Items[0].ProductID)
	assert.Equal(t, 1, left.Items[0].Quantity)
	assert.Equal(t, "shirt", left.Items[1].ProductID)
	assert.Equal(t, 2, left.Count)
}
