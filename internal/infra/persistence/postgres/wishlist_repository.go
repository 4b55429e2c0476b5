package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// wishlistRepository implements the domain.WishlistRepository interface using GORM.
type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository is the constructor for wishlistRepository.
func NewWishlistRepository(db *gorm.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func wishlistEntry(userID, productID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND product_id = ?", userID, productID)
	}
}

// ListByUser reads from the primary so a toggle is visible on the next page load.
func (repo *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	var entries []*model.WishlistModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list wishlist")
	}

	productIDs := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		productIDs = append(productIDs, entry.ProductID)
	}
	variants, err := repo.firstVariants(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	items := make([]*entity.WishlistItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toWishlistDomain(entry, variants[entry.ProductID]))
	}

	return items, nil
}

// firstVariants returns the lowest-id variant of each product.
func (repo *wishlistRepository) firstVariants(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*entity.ProductVariant, error) {
	variants := make(map[uuid.UUID]*entity.ProductVariant, len(productIDs))
	if len(productIDs) == 0 {
		return variants, nil
	}

	var variantModels []*model.ProductVariantModel
	err := repo.db.WithContext(ctx).
		Select("DISTINCT ON (product_id) *").
		Where("product_id IN ?", productIDs).
		Order("product_id, id").
		Find(&variantModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load wishlist variants")
	}

	for _, variantM := range variantModels {
		variants[variantM.ProductID] = toVariantDomain(variantM)
	}

	return variants, nil
}

func (repo *wishlistRepository) Add(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	entry := &model.WishlistModel{
		ID:        newID(),
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now().UTC(),
	}
	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(entry)
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return false, repository.ErrProductNotFound
		}

		return false, errors.Wrap(result.Error, "failed to add wishlist entry")
	}

	return result.RowsAffected == 1, nil
}

func (repo *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).Scopes(wishlistEntry(userID, productID)).Delete(&model.WishlistModel{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to remove wishlist entry")
	}

	return result.RowsAffected > 0, nil
}

func (repo *wishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.WishlistModel{}).
		Scopes(wishlistEntry(userID, productID)).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check wishlist entry")
	}

	return count > 0, nil
}

func toWishlistDomain(data *model.WishlistModel, variant *entity.ProductVariant) *entity.WishlistItem {
	item := &entity.WishlistItem{
		ID:        data.ID,
		UserID:    data.UserID,
		ProductID: data.ProductID,
		AddedAt:   data.AddedAt,
		Variant:   variant,
	}
	if data.Product != nil {
		item.Product = &entity.Product{ID: data.Product.ID, Name: data.Product.Name}
	}

	return item
}
