package model

import (
	"time"

	"github.com/google/uuid"
)

// GuestModel mirrors the 'guests' table.
type GuestModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionToken string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (GuestModel) TableName() string {
	return "guests"
}

// CartModel mirrors the 'carts' table. Exactly one of UserID and GuestID is set, and
// each is unique so an owner can never hold two carts.
type CartModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_carts_user_id;check:chk_carts_single_owner,(user_id IS NULL) <> (guest_id IS NULL)"`
	GuestID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_carts_guest_id"`
	CouponCode *string    `gorm:"type:varchar(64)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel mirrors the 'cart_items' table. ProductVariantID has no foreign key;
// catalog deletions leave stale lines that pricing skips.
type CartItemModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant"`
	ProductVariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant"`
	Quantity         int       `gorm:"not null;check:chk_cart_items_quantity,quantity >= 1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (CartItemModel) TableName() string {
	return "cart_items"
}
