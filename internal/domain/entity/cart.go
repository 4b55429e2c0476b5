// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// OwnerKind tells which identity a cart is bound to.
type OwnerKind string

const (
	// OwnerKindUser marks a cart owned by an authenticated account.
	OwnerKindUser OwnerKind = "user"
	// OwnerKindGuest marks a cart owned by an anonymous guest session.
	OwnerKindGuest OwnerKind = "guest"
)

// CartOwner is a tagged union of the two identities that may own a cart.
// The zero value means "no owner yet": no cart can be created for it until
// a guest identity has been minted.
type CartOwner struct {
	Kind    OwnerKind
	UserID  uuid.UUID // set only when Kind is OwnerKindUser
	GuestID uuid.UUID // set only when Kind is OwnerKindGuest
}

// UserOwner returns the owner reference for an authenticated user.
func UserOwner(userID uuid.UUID) CartOwner {
	return CartOwner{Kind: OwnerKindUser, UserID: userID}
}

// GuestOwner returns the owner reference for a guest identity.
func GuestOwner(guestID uuid.UUID) CartOwner {
	return CartOwner{Kind: OwnerKindGuest, GuestID: guestID}
}

// IsZero reports whether no owner has been resolved.
func (o CartOwner) IsZero() bool {
	switch o.Kind {
	case OwnerKindUser:
		return o.UserID == uuid.Nil
	case OwnerKindGuest:
		return o.GuestID == uuid.Nil
	default:
		return true
	}
}

// IsUser reports whether the owner is an authenticated user.
func (o CartOwner) IsUser() bool {
	return o.Kind == OwnerKindUser && o.UserID != uuid.Nil
}

// IsGuest reports whether the owner is a guest identity.
func (o CartOwner) IsGuest() bool {
	return o.Kind == OwnerKindGuest && o.GuestID != uuid.Nil
}

// String renders the owner for logs, e.g. "user:<uuid>".
func (o CartOwner) String() string {
	switch {
	case o.IsUser():
		return string(OwnerKindUser) + ":" + o.UserID.String()
	case o.IsGuest():
		return string(OwnerKindGuest) + ":" + o.GuestID.String()
	default:
		return "none"
	}
}

// Cart is the persisted shopping cart of exactly one owner.
// A cart with zero items is still active: the owner binding is kept so the next
// add reuses the same cart id.
type Cart struct {
	ID         uuid.UUID
	Owner      CartOwner
	CouponCode string // empty when no coupon is applied
	Items      []*CartLineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line item with the given id, or nil.
func (c *Cart) Item(lineItemID uuid.UUID) *CartLineItem {
	if c == nil {
		return nil
	}
	for _, item := range c.Items {
		if item.ID == lineItemID {
			return item
		}
	}

	return nil
}

// ItemByVariant returns the line item holding the given variant, or nil.
func (c *Cart) ItemByVariant(variantID uuid.UUID) *CartLineItem {
	if c == nil {
		return nil
	}
	for _, item := range c.Items {
		if item.ProductVariantID == variantID {
			return item
		}
	}

	return nil
}

// ItemCount returns the total quantity across all line items.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

// CartLineItem is one variant and quantity pairing inside a cart.
// Prices are never stored here; they are re-derived from the live variant.
type CartLineItem struct {
	ID               uuid.UUID
	CartID           uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int
	Variant          *ProductVariant // nil when the variant no longer exists
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsStale reports whether the referenced variant has been deleted from the catalog.
func (li *CartLineItem) IsStale() bool {
	return li.Variant == nil
}
