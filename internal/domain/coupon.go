package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Type       string          `json:"type"` // percentage, fixed
	Value      decimal.Decimal `json:"value"`
	MinSpend   decimal.Decimal `json:"minSpend"`
	UsageLimit int             `json:"usageLimit"`
	UsedCount  int             `json:"usedCount"`
	StartAt    *time.Time      `json:"startAt,omitempty"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	IsActive   bool            `json:"isActive"`
}

// CouponQuote is the outcome of applying a coupon to a subtotal.
type CouponQuote struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// NormalizeCouponCode trims and upper-cases a user-entered code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check returns a user-facing error when the coupon cannot be used now for subtotal.
func (c *Coupon) Check(now time.Time, subtotal decimal.Decimal) error {
	switch {
	case !c.IsActive:
		return InvalidInput("coupon is inactive")
	case c.StartAt != nil && now.Before(*c.StartAt):
		return InvalidInput("coupon is not yet active")
	case c.ExpiresAt != nil && now.After(*c.ExpiresAt):
		return InvalidInput("coupon has expired")
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return InvalidInput("coupon usage limit reached")
	case subtotal.LessThan(c.MinSpend):
		return InvalidInput("minimum spend of " + c.MinSpend.StringFixed(2) + " not met")
	}
	return nil
}

// Discount computes the discount for subtotal, capped at the subtotal.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.Type {
	case CouponTypePercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case CouponTypeFixed:
		discount = c.Value
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// Quote validates the coupon and applies it.
func (c *Coupon) Quote(now time.Time, subtotal decimal.Decimal) (*CouponQuote, error) {
	if err := c.Check(now, subtotal); err != nil {
		return nil, err
	}
	discount := c.Discount(subtotal)
	return &CouponQuote{
		Code:     c.Code,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

// Coupons looks coupons up by code. A missing code is a failed result, not an error.
type Coupons interface {
	ValidateCoupon(ctx context.Context, code string) (MutationResult[Coupon], error)
}
