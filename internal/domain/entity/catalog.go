package entity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry a variant belongs to. Read-only here.
type Product struct {
	ID   uuid.UUID
	Name string
}

// Color is a variant attribute.
type Color struct {
	ID   uuid.UUID
	Name string
}

// Size is a variant attribute.
type Size struct {
	ID   uuid.UUID
	Name string
}

// ProductVariant is a purchasable SKU. Prices arrive from the catalog as
// decimal strings and must be parsed before any arithmetic.
type ProductVariant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Price     string
	SalePrice *string
	Product   *Product
	Color     *Color
	Size      *Size
}

// EffectivePrice returns the sale price when one is set, else the list price.
func (v *ProductVariant) EffectivePrice() (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, errors.New("variant is nil")
	}

	raw := v.Price
	if v.SalePrice != nil && strings.TrimSpace(*v.SalePrice) != "" {
		raw = *v.SalePrice
	}

	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid price %q for variant %s", raw, v.ID)
	}
	if price.IsNegative() {
		return decimal.Zero, errors.Errorf("negative price %q for variant %s", raw, v.ID)
	}

	return price, nil
}

// ProductName returns the product name or an empty string.
func (v *ProductVariant) ProductName() string {
	if v == nil || v.Product == nil {
		return ""
	}

	return v.Product.Name
}

// ColorName returns the color name or an empty string.
func (v *ProductVariant) ColorName() string {
	if v == nil || v.Color == nil {
		return ""
	}

	return v.Color.Name
}

// SizeName returns the size name or an empty string.
func (v *ProductVariant) SizeName() string {
	if v == nil || v.Size == nil {
		return ""
	}

	return v.Size.Name
}
