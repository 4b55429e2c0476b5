// Package pricing derives cart and order totals. Everything here is pure:
// the same lines and settings always produce the same Totals.
package pricing

import (
	"strings"

	"storefront/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of decimal places kept in presented amounts.
	MoneyScale = 2
	// minorUnitExponent converts major units to cents for two-decimal currencies.
	minorUnitExponent = 2
)

var hundred = decimal.NewFromInt(100)

// Settings are the configured money rules.
type Settings struct {
	Currency              string
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// ParseSettings builds Settings from decimal strings.
func ParseSettings(currency, freeShippingThreshold, flatShippingFee, taxRate string) (Settings, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(freeShippingThreshold))
	if err != nil {
		return Settings{}, errors.Wrap(err, "invalid free shipping threshold")
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(flatShippingFee))
	if err != nil {
		return Settings{}, errors.Wrap(err, "invalid flat shipping fee")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(taxRate))
	if err != nil {
		return Settings{}, errors.Wrap(err, "invalid tax rate")
	}
	if threshold.IsNegative() || fee.IsNegative() || rate.IsNegative() {
		return Settings{}, errors.New("pricing settings must not be negative")
	}

	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}

	return Settings{
		Currency:              currency,
		FreeShippingThreshold: threshold,
		FlatShippingFee:       fee,
		TaxRate:               rate,
	}, nil
}

// Line is one priced quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount returns UnitPrice * Quantity without rounding.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the breakdown shown to shoppers and snapshotted into orders.
// Components are kept at full precision; only Total is rounded.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

// Calculator applies Settings to priced lines.
type Calculator struct {
	settings Settings
}

// NewCalculator is the constructor for Calculator.
func NewCalculator(settings Settings) *Calculator {
	return &Calculator{settings: settings}
}

// Settings returns the configured rules.
func (c *Calculator) Settings() Settings {
	return c.settings
}

// ComputeTotals derives subtotal, shipping, tax, discount and total.
// coupon may be nil; callers decide beforehand whether it is redeemable.
func (c *Calculator) ComputeTotals(lines []Line, coupon *entity.Coupon) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount())
	}

	shipping := c.settings.FlatShippingFee
	if len(lines) == 0 || subtotal.GreaterThan(c.settings.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(c.settings.TaxRate)

	gross := subtotal.Add(shipping).Add(tax)
	discount := couponDiscount(coupon, subtotal)
	if discount.GreaterThan(gross) {
		discount = gross
	}

	total := gross.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    total.Round(MoneyScale),
		Currency: c.settings.Currency,
	}
}

// CartLines prices the non-stale items of a cart. Items whose variant no longer
// exists are skipped and returned separately.
func CartLines(items []*entity.CartLineItem) (lines []Line, stale []*entity.CartLineItem, err error) {
	lines = make([]Line, 0, len(items))
	for _, item := range items {
		if item.IsStale() {
			stale = append(stale, item)

			continue
		}

		price, priceErr := item.Variant.EffectivePrice()
		if priceErr != nil {
			return nil, nil, errors.Wrapf(priceErr, "price line item %s", item.ID)
		}
		lines = append(lines, Line{UnitPrice: price, Quantity: item.Quantity})
	}

	return lines, stale, nil
}

// ToMinorUnits converts an amount to an integer count of minor units (cents),
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Round(0).IntPart()
}

// Present formats an amount with two decimals for API responses.
func Present(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyScale)
}

func couponDiscount(coupon *entity.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || coupon.Value.IsNegative() {
		return decimal.Zero
	}

	switch coupon.Kind {
	case entity.CouponKindPercent:
		percent := decimal.Min(coupon.Value, hundred)

		return subtotal.Mul(percent).Div(hundred)
	case entity.CouponKindFixed:
		return coupon.Value
	default:
		return decimal.Zero
	}
}
