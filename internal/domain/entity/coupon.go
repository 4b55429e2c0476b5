package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponKind selects how a coupon value is applied.
type CouponKind string

const (
	// CouponKindPercent takes Value percent off the subtotal.
	CouponKindPercent CouponKind = "percent"
	// CouponKindFixed takes a flat Value off the order.
	CouponKindFixed CouponKind = "fixed"
)

// Coupon is a discount code that can be attached to a cart.
type Coupon struct {
	Code      string
	Kind      CouponKind
	Value     decimal.Decimal
	Active    bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// IsRedeemable reports whether the coupon may be applied at now.
func (c *Coupon) IsRedeemable(now time.Time) bool {
	if c == nil || !c.Active || c.Value.IsNegative() {
		return false
	}
	if c.Kind != CouponKindPercent && c.Kind != CouponKindFixed {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}

	return true
}
