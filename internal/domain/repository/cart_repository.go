package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for cart persistence.
var (
	// ErrCartNotFound is returned when no cart matches the lookup.
	ErrCartNotFound = errors.New("cart not found")
	// ErrLineItemNotFound is returned when a line item does not exist in the given cart.
	ErrLineItemNotFound = errors.New("cart line item not found")
	// ErrOwnerTaken is returned when a cart is reassigned to an owner that already has one.
	ErrOwnerTaken = errors.New("owner already has a cart")
)

// CartRepository persists carts and their line items.
//
// Every read returns line items with their variant, product, color and size
// loaded. A line item whose variant has been removed from the catalog comes
// back with a nil Variant.
type CartRepository interface {
	// FindByOwner returns the owner's carts, newest first. The slice is empty when
	// the owner has none; more than one entry indicates a legacy duplicate.
	FindByOwner(ctx context.Context, owner entity.CartOwner) ([]*entity.Cart, error)

	// FindByOwnerForUpdate is FindByOwner with the cart rows locked until the
	// enclosing transaction ends.
	FindByOwnerForUpdate(ctx context.Context, owner entity.CartOwner) ([]*entity.Cart, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error)

	// FindByIDForUpdate locks the cart row until the enclosing transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cart, error)

	// GetOrCreate returns the owner's cart, inserting an empty one if none exists.
	// Two concurrent callers for the same owner always observe the same cart id.
	GetOrCreate(ctx context.Context, owner entity.CartOwner) (*entity.Cart, error)

	// ReassignOwner moves the cart to another owner in place, keeping its id and items.
	// It returns ErrOwnerTaken if the new owner already has a cart.
	ReassignOwner(ctx context.Context, cartID uuid.UUID, owner entity.CartOwner) error

	// SetCoupon stores the applied coupon code; an empty code clears it.
	SetCoupon(ctx context.Context, cartID uuid.UUID, code string) error

	// Touch bumps the cart's updated timestamp.
	Touch(ctx context.Context, cartID uuid.UUID) error

	// Delete removes the cart together with its line items.
	Delete(ctx context.Context, cartID uuid.UUID) error

	FindLineItem(ctx context.Context, cartID, itemID uuid.UUID) (*entity.CartLineItem, error)

	// UpsertLineItem adds quantity to the cart's line for the variant, creating the
	// line if needed. The increment happens in a single statement so concurrent
	// adds are never lost.
	UpsertLineItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int) (*entity.CartLineItem, error)

	// SetLineItemQuantity overwrites the quantity of an existing line.
	SetLineItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error

	DeleteLineItem(ctx context.Context, cartID, itemID uuid.UUID) error

	// DeleteLineItems empties the cart but keeps the cart row.
	DeleteLineItems(ctx context.Context, cartID uuid.UUID) error

	// MoveLineItem re-parents a line item to another cart. The destination must not
	// already hold a line for the same variant.
	MoveLineItem(ctx context.Context, itemID, toCartID uuid.UUID) error
}
