package domain

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Payment Methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

// Ticket Statuses
const (
	TicketStatusOpen     = "open"
	TicketStatusPending  = "pending"
	TicketStatusResolved = "resolved"
	TicketStatusClosed   = "closed"
)

// Coupon Types
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Listing sort keys accepted by both backends.
const (
	SortCreatedAt = "created_at"
	SortPrice     = "price"
	SortName      = "name"
	SortRating    = "rating"
)

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodCard,
	PaymentMethodWallet,
}

var SortKeys = []string{
	SortCreatedAt,
	SortPrice,
	SortName,
	SortRating,
}
