package postgres

import (
	"context"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// variantRepository implements the domain.VariantRepository interface using GORM.
type variantRepository struct {
	db *gorm.DB
}

// NewVariantRepository is the constructor for variantRepository.
func NewVariantRepository(db *gorm.DB) repository.VariantRepository {
	return &variantRepository{db: db}
}

// FindByID retrieves a variant with its product, color and size.
func (repo *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariant, error) {
	variants, err := loadVariants(ctx, repo.db, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}

	variant, ok := variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}

	return variant, nil
}

// loadVariants returns the variants that still exist, keyed by id.
func loadVariants(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*entity.ProductVariant, error) {
	variants := make(map[uuid.UUID]*entity.ProductVariant, len(ids))
	if len(ids) == 0 {
		return variants, nil
	}

	var variantModels []*model.ProductVariantModel
	err := db.WithContext(ctx).
		Preload("Product").
		Preload("Color").
		Preload("Size").
		Where("id IN ?", ids).
		Find(&variantModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load product variants")
	}

	for _, variantM := range variantModels {
		variants[variantM.ID] = toVariantDomain(variantM)
	}

	return variants, nil
}

// couponRepository implements the domain.CouponRepository interface using GORM.
type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository is the constructor for couponRepository.
func NewCouponRepository(db *gorm.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (repo *couponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, repository.ErrCouponNotFound
	}

	var couponM model.CouponModel
	err := repo.db.WithContext(ctx).Where("UPPER(code) = UPPER(?)", code).First(&couponM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCouponNotFound
		}

		return nil, errors.Wrap(err, "failed to find coupon by code")
	}

	return toCouponDomain(&couponM), nil
}

// --- Mapper Functions ---

func toVariantDomain(data *model.ProductVariantModel) *entity.ProductVariant {
	variant := &entity.ProductVariant{
		ID:        data.ID,
		ProductID: data.ProductID,
		Price:     data.Price,
		SalePrice: data.SalePrice,
	}
	if data.Product != nil {
		variant.Product = &entity.Product{ID: data.Product.ID, Name: data.Product.Name}
	}
	if data.Color != nil {
		variant.Color = &entity.Color{ID: data.Color.ID, Name: data.Color.Name}
	}
	if data.Size != nil {
		variant.Size = &entity.Size{ID: data.Size.ID, Name: data.Size.Name}
	}

	return variant
}

func toCouponDomain(data *model.CouponModel) *entity.Coupon {
	return &entity.Coupon{
		Code:      data.Code,
		Kind:      entity.CouponKind(data.Kind),
		Value:     data.Value,
		Active:    data.Active,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
