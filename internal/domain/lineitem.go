package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateKind selects how a line-item store counts its items.
type AggregateKind string

const (
	KindCart     AggregateKind = "cart"
	KindWishlist AggregateKind = "wishlist"
)

func (k AggregateKind) Valid() bool {
	return k == KindCart || k == KindWishlist
}

// LineItem is one consolidated entry of a cart or wishlist. Name, image,
// price and shop are captured when the entry is created and never refreshed.
type LineItem struct {
	ProductID string          `json:"productId"`
	Variants  Variants        `json:"variants,omitempty"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	ShopID    string          `json:"shopId,omitempty"`
	ShopName  string          `json:"shopName,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AggregateSnapshot is the read model of a store after a mutation.
type AggregateSnapshot struct {
	Kind  AggregateKind   `json:"kind"`
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// SnapshotStore persists opaque snapshots by key.
type SnapshotStore interface {
	// Get returns the stored value; found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ConversionTracker receives commerce events for ad attribution.
type ConversionTracker interface {
	TrackAddToCart(ctx context.Context, owner string, item LineItem)
	TrackAddToWishlist(ctx context.Context, owner string, item LineItem)
	TrackPurchase(ctx context.Context, owner string, order *Order)
}
