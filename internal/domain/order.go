package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Status        string          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CouponCode    string          `json:"couponCode,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	AddressID     string          `json:"addressId,omitempty"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	ShopID    string          `json:"shopId,omitempty"`
	Name      string          `json:"name"`
	Variants  Variants        `json:"variants,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // Price at time of purchase
}

// OrderRequest is what checkout sends to the backend.
type OrderRequest struct {
	UserID        string          `json:"userId"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	CouponCode    string          `json:"couponCode,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	AddressID     string          `json:"addressId,omitempty"`
	Address       *Address        `json:"address,omitempty"`
}

// OrderItemsFrom converts cart lines into order lines at their captured prices.
func OrderItemsFrom(lines []LineItem) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			ShopID:    l.ShopID,
			Name:      l.Name,
			Variants:  l.Variants.Clone(),
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return items
}

// Orders is the remote order interface. The caller identity travels in ctx.
type Orders interface {
	CreateOrder(ctx context.Context, req OrderRequest) (MutationResult[Order], error)
	ListOrders(ctx context.Context, userID string) ([]Order, error)
}
