package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel mirrors the 'products' table. The catalog is read-only for this service.
type ProductModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}

// ColorModel mirrors the 'colors' table.
type ColorModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(64);not null"`
}

// TableName explicitly sets the table name for GORM.
func (ColorModel) TableName() string {
	return "colors"
}

// SizeModel mirrors the 'sizes' table.
type SizeModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(64);not null"`
}

// TableName explicitly sets the table name for GORM.
func (SizeModel) TableName() string {
	return "sizes"
}

// ProductVariantModel mirrors the 'product_variants' table. Prices are scanned as the
// database's decimal text so they never pass through float64.
type ProductVariantModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ColorID   *uuid.UUID `gorm:"type:uuid"`
	SizeID    *uuid.UUID `gorm:"type:uuid"`
	Price     string     `gorm:"type:numeric(12,2);not null"`
	SalePrice *string    `gorm:"type:numeric(12,2)"`

	Product *ProductModel `gorm:"foreignKey:ProductID"`
	Color   *ColorModel   `gorm:"foreignKey:ColorID"`
	Size    *SizeModel    `gorm:"foreignKey:SizeID"`
}

// TableName explicitly sets the table name for GORM.
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// CouponModel mirrors the 'coupons' table.
type CouponModel struct {
	Code      string          `gorm:"type:varchar(64);primaryKey"`
	Kind      string          `gorm:"type:varchar(16);not null;check:chk_coupons_kind,kind IN ('percent','fixed')"`
	Value     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CouponModel) TableName() string {
	return "coupons"
}
