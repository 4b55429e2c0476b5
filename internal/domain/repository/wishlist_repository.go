package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrProductNotFound is returned when a wishlist write names a product the catalog does not have.
var ErrProductNotFound = errors.New("product not found")

// WishlistRepository stores the products users saved for later.
type WishlistRepository interface {
	// ListByUser returns the user's entries newest first, with product and first variant attached.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error)

	// Add inserts the pair unless it already exists. It reports whether a row was written.
	Add(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
