package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// WishlistStatus is the membership of one product after a wishlist write.
type WishlistStatus struct {
	ProductID  uuid.UUID
	InWishlist bool
}

// WishlistUsecase manages the products a signed-in user saved for later.
// Adds and removes are idempotent.
type WishlistUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*WishlistStatus, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*WishlistStatus, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Toggle removes the product when present and adds it otherwise, in one transaction.
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*WishlistStatus, error)
}
