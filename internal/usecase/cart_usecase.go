package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/pricing"

	"github.com/google/uuid"
)

// CartView is a loaded cart with totals derived at read time.
// Cart is nil when the owner has no cart yet.
type CartView struct {
	Cart   *entity.Cart
	Totals pricing.Totals

	// Coupon is the applied coupon if it is still redeemable.
	Coupon *entity.Coupon

	// StaleItems reference variants that no longer exist; they are excluded from totals.
	StaleItems []*entity.CartLineItem
}

// AddItemInput defines the data required to add a variant to a cart.
type AddItemInput struct {
	VariantID uuid.UUID
	Quantity  int
}

// CartUsecase is the cart store as seen by the delivery layer. Every operation acts
// on the owner's single cart.
type CartUsecase interface {
	GetCart(ctx context.Context, owner entity.CartOwner) (*CartView, error)
	AddItem(ctx context.Context, owner entity.CartOwner, input *AddItemInput) (*CartView, error)

	// UpdateItem sets a line's quantity; quantity <= 0 removes the line.
	UpdateItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID) (*CartView, error)

	// Clear empties the cart but keeps it bound to the owner.
	Clear(ctx context.Context, owner entity.CartOwner, cartID uuid.UUID) (*CartView, error)

	ApplyCoupon(ctx context.Context, owner entity.CartOwner, code string) (*CartView, error)
	RemoveCoupon(ctx context.Context, owner entity.CartOwner) (*CartView, error)
}
