package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the only mutable field of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// Order is the immutable snapshot of a paid cart.
type Order struct {
	ID              uuid.UUID
	UserID          *uuid.UUID // nil for guest checkouts
	SessionRef      string     // external checkout session reference, unique
	Status          OrderStatus
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	CouponCode      string
	CustomerEmail   string
	ShippingAddress *PostalAddress
	BillingAddress  *PostalAddress
	Items           []*OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelongsTo reports whether the order was placed by the given user.
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o != nil && o.UserID != nil && *o.UserID == userID
}

// OrderItem copies what was bought at purchase time.
type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductVariantID uuid.UUID
	ProductName      string
	ColorName        string
	SizeName         string
	UnitPrice        decimal.Decimal
	Quantity         int
	LineTotal        decimal.Decimal
}
