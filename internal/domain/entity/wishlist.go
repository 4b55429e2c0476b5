package entity

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem is a product a signed-in user saved for later. A product appears at most
// once per user.
type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	AddedAt   time.Time

	// Product and Variant are read from the catalog when listing. Variant is the first
	// variant of the product and is nil when the product has none.
	Product *Product
	Variant *ProductVariant
}
