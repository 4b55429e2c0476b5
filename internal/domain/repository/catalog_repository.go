package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrVariantNotFound is returned when a product variant does not exist.
	ErrVariantNotFound = errors.New("product variant not found")
	// ErrCouponNotFound is returned when no coupon has the given code.
	ErrCouponNotFound = errors.New("coupon not found")
)

// VariantRepository reads purchasable product variants.
type VariantRepository interface {
	// FindByID returns the variant with its product, color and size.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariant, error)
}

// CouponRepository reads discount codes.
type CouponRepository interface {
	// FindByCode matches codes case-insensitively.
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
}
