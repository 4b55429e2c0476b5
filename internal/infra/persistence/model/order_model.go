package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderModel mirrors the 'orders' table. SessionRef is unique so a payment session can
// place at most one order.
type OrderModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index"`
	SessionRef      string          `gorm:"type:varchar(255);uniqueIndex:idx_orders_session_ref;not null"`
	Status          string          `gorm:"type:varchar(16);not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Shipping        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	CouponCode      *string         `gorm:"type:varchar(64)"`
	CustomerEmail   string          `gorm:"type:varchar(255)"`
	ShippingAddress datatypes.JSON  `gorm:"type:jsonb"`
	BillingAddress  datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table. Names are copied at purchase time.
type OrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductVariantID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(255);not null"`
	ColorName        string          `gorm:"type:varchar(64)"`
	SizeName         string          `gorm:"type:varchar(64)"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity         int             `gorm:"not null"`
	LineTotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}

// All lists every model managed by AutoMigrate, parents first.
func All() []any {
	return []any{
		&UserModel{},
		&AuthenticationModel{},
		&RefreshTokenModel{},
		&GuestModel{},
		&ProductModel{},
		&ColorModel{},
		&SizeModel{},
		&ProductVariantModel{},
		&CouponModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&WishlistModel{},
	}
}
