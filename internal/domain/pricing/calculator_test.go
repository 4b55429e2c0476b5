package pricing

import (
	"testing"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()

	settings, err := ParseSettings("USD", "100", "9.99", "0.08")
	require.NoError(t, err)

	return NewCalculator(settings)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals_ShippingThreshold(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name     string
		lines    []Line
		shipping string
		tax      string
		total    string
	}{
		{
			name:     "over threshold ships free",
			lines:    []Line{{UnitPrice: d("60.00"), Quantity: 2}},
			shipping: "0.00",
			tax:      "9.60",
			total:    "129.60",
		},
		{
			name:     "under threshold pays flat fee",
			lines:    []Line{{UnitPrice: d("25.00"), Quantity: 2}},
			shipping: "9.99",
			tax:      "4.00",
			total:    "63.99",
		},
		{
			name:     "exactly at threshold is not over it",
			lines:    []Line{{UnitPrice: d("100.00"), Quantity: 1}},
			shipping: "9.99",
			tax:      "8.00",
			total:    "117.99",
		},
		{
			name:     "empty cart has nothing to ship",
			lines:    nil,
			shipping: "0.00",
			tax:      "0.00",
			total:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := calc.ComputeTotals(tt.lines, nil)
			assert.Equal(t, tt.shipping, Present(totals.Shipping))
			assert.Equal(t, tt.tax, Present(totals.Tax))
			assert.Equal(t, tt.total, Present(totals.Total))
			assert.Equal(t, "usd", totals.Currency)
			assert.True(t, totals.Discount.IsZero())
		})
	}
}

func TestComputeTotals_RoundsOnlyAtTheEnd(t *testing.T) {
	calc := newTestCalculator(t)

	// 30 lines of 3.333 each: rounding every line would drift by 0.09.
	lines := make([]Line, 30)
	for i := range lines {
		lines[i] = Line{UnitPrice: d("3.333"), Quantity: 1}
	}

	totals := calc.ComputeTotals(lines, nil)
	assert.Equal(t, "99.99", totals.Subtotal.String())
	// 99.99 + 9.99 + 7.9992 = 117.9792
	assert.Equal(t, "117.98", Present(totals.Total))
	assert.Equal(t, int32(-2), totals.Total.Exponent())
}

func TestComputeTotals_Idempotent(t *testing.T) {
	calc := newTestCalculator(t)
	lines := []Line{
		{UnitPrice: d("19.99"), Quantity: 3},
		{UnitPrice: d("0.01"), Quantity: 7},
	}
	coupon := &entity.Coupon{Code: "TEN", Kind: entity.CouponKindPercent, Value: d("10"), Active: true}

	first := calc.ComputeTotals(lines, coupon)
	second := calc.ComputeTotals(lines, coupon)

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Discount.String(), second.Discount.String())
	assert.Equal(t, first.Tax.String(), second.Tax.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
}

func TestComputeTotals_Coupons(t *testing.T) {
	calc := newTestCalculator(t)
	lines := []Line{{UnitPrice: d("50.00"), Quantity: 1}}

	tests := []struct {
		name     string
		coupon   *entity.Coupon
		discount string
		total    string
	}{
		{
			name:     "percent off subtotal",
			coupon:   &entity.Coupon{Kind: entity.CouponKindPercent, Value: d("10")},
			discount: "5.00",
			total:    "58.99",
		},
		{
			name:     "fixed amount",
			coupon:   &entity.Coupon{Kind: entity.CouponKindFixed, Value: d("15")},
			discount: "15.00",
			total:    "48.99",
		},
		{
			name:     "fixed amount larger than order floors total at zero",
			coupon:   &entity.Coupon{Kind: entity.CouponKindFixed, Value: d("500")},
			discount: "63.99",
			total:    "0.00",
		},
		{
			name:     "percent above one hundred is capped",
			coupon:   &entity.Coupon{Kind: entity.CouponKindPercent, Value: d("250")},
			discount: "50.00",
			total:    "13.99",
		},
		{
			name:     "negative value ignored",
			coupon:   &entity.Coupon{Kind: entity.CouponKindFixed, Value: d("-5")},
			discount: "0.00",
			total:    "63.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := calc.ComputeTotals(lines, tt.coupon)
			assert.Equal(t, tt.discount, Present(totals.Discount))
			assert.Equal(t, tt.total, Present(totals.Total))
		})
	}
}

func TestComputeTotals_TotalNeverNegative(t *testing.T) {
	calc := newTestCalculator(t)

	subtotals := []string{"0", "0.01", "9.99", "99.99", "100.01", "1234.56"}
	discounts := []string{"0", "0.01", "5", "63.99", "100", "99999"}

	for _, sub := range subtotals {
		for _, off := range discounts {
			lines := []Line{{UnitPrice: d(sub), Quantity: 1}}
			coupon := &entity.Coupon{Kind: entity.CouponKindFixed, Value: d(off)}

			totals := calc.ComputeTotals(lines, coupon)
			assert.False(t, totals.Total.IsNegative(), "subtotal=%s discount=%s", sub, off)
			assert.True(t, totals.Discount.LessThanOrEqual(totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)))
		}
	}
}

func TestCartLines(t *testing.T) {
	sale := "8.00"
	live := &entity.CartLineItem{
		ID:       uuid.New(),
		Quantity: 2,
		Variant:  &entity.ProductVariant{Price: "10.00", SalePrice: &sale},
	}
	stale := &entity.CartLineItem{ID: uuid.New(), Quantity: 1}

	lines, staleItems, err := CartLines([]*entity.CartLineItem{live, stale})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "16", lines[0].Amount().String())
	assert.Equal(t, []*entity.CartLineItem{stale}, staleItems)

	_, _, err = CartLines([]*entity.CartLineItem{{ID: uuid.New(), Quantity: 1, Variant: &entity.ProductVariant{Price: "n/a"}}})
	assert.Error(t, err)
}

func TestToMinorUnits(t *testing.T) {
	tests := map[string]int64{
		"0":       0,
		"9.99":    999,
		"19.995":  2000,
		"0.004":   0,
		"129.6":   12960,
		"1000.10": 100010,
	}

	for in, want := range tests {
		assert.Equal(t, want, ToMinorUnits(d(in)), in)
	}
}

func TestParseSettings_Rejects(t *testing.T) {
	_, err := ParseSettings("usd", "x", "9.99", "0.08")
	assert.Error(t, err)

	_, err = ParseSettings("usd", "100", "-1", "0.08")
	assert.Error(t, err)

	settings, err := ParseSettings("", "100", "9.99", "0.08")
	require.NoError(t, err)
	assert.Equal(t, "usd", settings.Currency)
}
