package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/pkg/logger"
)

type CheckoutRequest struct {
	AddressID     string          `json:"addressId"`
	Address       *domain.Address `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	CouponCode    string          `json:"couponCode"`
}

// CheckoutUsecase turns the owner's cart into an order on the backend.
type CheckoutUsecase struct {
	sessions *session.Registry
	orders   domain.Orders
	coupons  domain.Coupons
	tracker  domain.ConversionTracker
	now      func() time.Time
}

func NewCheckoutUsecase(sessions *session.Registry, orders domain.Orders, coupons domain.Coupons, tracker domain.ConversionTracker) *CheckoutUsecase {
	return &CheckoutUsecase{
		sessions: sessions,
		orders:   orders,
		coupons:  coupons,
		tracker:  trackerOrNoop(tracker),
		now:      time.Now,
	}
}

// Checkout places an order for every cart line at its captured price. Only
// when the backend reports success are the ordered quantities taken out of
// the cart; lines added while the order was in flight stay.
func (u *CheckoutUsecase) Checkout(ctx context.Context, owner string, req CheckoutRequest) (*domain.Order, error) {
	id := auth.FromContext(ctx)
	if !id.IsAuthenticated() {
		return nil, domain.Unauthorized("please sign in to checkout")
	}
	if !id.Role.CanCheckout() {
		return nil, domain.Forbidden("this account cannot place orders")
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentMethodCOD
	}
	if !slices.Contains(domain.PaymentMethods, req.PaymentMethod) {
		return nil, domain.InvalidInput("unsupported payment method: " + req.PaymentMethod)
	}
	if req.AddressID == "" && req.Address == nil {
		return nil, domain.InvalidInput("shipping address is required")
	}
	if req.Address != nil {
		if err := validateInput(req.Address); err != nil {
			return nil, err
		}
	}

	store := u.sessions.Get(ctx, owner).Cart
	cart := store.Snapshot()
	if len(cart.Items) == 0 {
		return nil, domain.InvalidInput("cart is empty")
	}

	subtotal := cart.Total
	discount := decimal.Zero
	code := domain.NormalizeCouponCode(req.CouponCode)
	if code != "" {
		quote, err := quoteCoupon(ctx, u.coupons, code, subtotal, u.now())
		if err != nil {
			return nil, err
		}
		discount = quote.Discount
	}

	orderReq := domain.OrderRequest{
		UserID:        id.UserID,
		Items:         domain.OrderItemsFrom(cart.Items),
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         subtotal.Sub(discount),
		CouponCode:    code,
		PaymentMethod: req.PaymentMethod,
		AddressID:     req.AddressID,
		Address:       req.Address,
	}

	res, err := u.orders.CreateOrder(ctx, orderReq)
	if err != nil {
		return nil, backendErr("orders.CreateOrder", err)
	}
	if !res.Success {
		return nil, domain.Rejected(res.Error)
	}

	order := res.Data
	if order == nil {
		order = &domain.Order{
			UserID:        orderReq.UserID,
			Status:        domain.OrderStatusPending,
			Subtotal:      orderReq.Subtotal,
			Discount:      orderReq.Discount,
			TotalAmount:   orderReq.Total,
			CouponCode:    orderReq.CouponCode,
			PaymentMethod: orderReq.PaymentMethod,
			AddressID:     orderReq.AddressID,
			Items:         orderReq.Items,
			CreatedAt:     u.now(),
		}
	}

	store.Deduct(ctx, cart.Items)
	u.tracker.TrackPurchase(ctx, owner, order)

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("user_id", id.UserID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("Order placed")

	return order, nil
}
