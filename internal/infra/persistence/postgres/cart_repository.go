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

const (
	idxCartsUserID  = "idx_carts_user_id"
	idxCartsGuestID = "idx_carts_guest_id"
)

// cartRepository implements the domain.CartRepository interface using GORM.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// ownerScope restricts a query to the carts of one owner.
func ownerScope(owner entity.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case owner.IsUser():
			return db.Where("user_id = ?", owner.UserID)
		case owner.IsGuest():
			return db.Where("guest_id = ?", owner.GuestID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// FindByOwner reads from the primary: a cart read right after a mutation must see it.
func (repo *cartRepository) FindByOwner(ctx context.Context, owner entity.CartOwner) ([]*entity.Cart, error) {
	return repo.findByOwner(ctx, repo.db.WithContext(ctx).Clauses(dbresolver.Write), owner)
}

func (repo *cartRepository) FindByOwnerForUpdate(ctx context.Context, owner entity.CartOwner) ([]*entity.Cart, error) {
	return repo.findByOwner(ctx, repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), owner)
}

func (repo *cartRepository) findByOwner(ctx context.Context, query *gorm.DB, owner entity.CartOwner) ([]*entity.Cart, error) {
	if owner.IsZero() {
		return nil, nil
	}

	var cartModels []*model.CartModel
	if err := query.Scopes(ownerScope(owner)).Order("updated_at DESC").Find(&cartModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find carts by owner")
	}

	return repo.loadCarts(ctx, cartModels)
}

func (repo *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	return repo.findByID(ctx, repo.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

func (repo *cartRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	return repo.findByID(ctx, repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (repo *cartRepository) findByID(ctx context.Context, query *gorm.DB, id uuid.UUID) (*entity.Cart, error) {
	var cartM model.CartModel
	if err := query.Where("id = ?", id).First(&cartM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart by id")
	}

	carts, err := repo.loadCarts(ctx, []*model.CartModel{&cartM})
	if err != nil {
		return nil, err
	}

	return carts[0], nil
}

// GetOrCreate relies on the unique owner indexes: the insert is a no-op when a
// concurrent caller already created the cart, and the follow-up read sees theirs.
func (repo *cartRepository) GetOrCreate(ctx context.Context, owner entity.CartOwner) (*entity.Cart, error) {
	if owner.IsZero() {
		return nil, errors.New("cannot create a cart without an owner")
	}

	cartM := &model.CartModel{ID: newID()}
	setOwner(cartM, owner)

	if err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(cartM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to insert cart")
	}

	carts, err := repo.findByOwner(ctx, repo.db.WithContext(ctx).Clauses(dbresolver.Write), owner)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, errors.Wrap(repository.ErrCartNotFound, "cart vanished after insert")
	}

	return carts[0], nil
}

func (repo *cartRepository) ReassignOwner(ctx context.Context, cartID uuid.UUID, owner entity.CartOwner) error {
	if owner.IsZero() {
		return errors.New("cannot reassign a cart to no owner")
	}

	cartM := &model.CartModel{}
	setOwner(cartM, owner)

	result := repo.db.WithContext(ctx).
		Model(&model.CartModel{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"user_id":    cartM.UserID,
			"guest_id":   cartM.GuestID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if isUniqueViolationOn(result.Error, idxCartsUserID) || isUniqueViolationOn(result.Error, idxCartsGuestID) {
			return repository.ErrOwnerTaken
		}

		return errors.Wrap(result.Error, "failed to reassign cart owner")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartNotFound
	}

	return nil
}

func (repo *cartRepository) SetCoupon(ctx context.Context, cartID uuid.UUID, code string) error {
	var value *string
	if code != "" {
		value = &code
	}

	return repo.updateCart(ctx, cartID, map[string]any{"coupon_code": value, "updated_at": time.Now()})
}

func (repo *cartRepository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return repo.updateCart(ctx, cartID, map[string]any{"updated_at": time.Now()})
}

func (repo *cartRepository) updateCart(ctx context.Context, cartID uuid.UUID, values map[string]any) error {
	result := repo.db.WithContext(ctx).Model(&model.CartModel{}).Where("id = ?", cartID).Updates(values)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update cart")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartNotFound
	}

	return nil
}

func (repo *cartRepository) Delete(ctx context.Context, cartID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItemModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete cart items")
	}

	result := repo.db.WithContext(ctx).Where("id = ?", cartID).Delete(&model.CartModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete cart")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartNotFound
	}

	return nil
}

func (repo *cartRepository) FindLineItem(ctx context.Context, cartID, itemID uuid.UUID) (*entity.CartLineItem, error) {
	var itemM model.CartItemModel
	err := repo.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&itemM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLineItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find line item")
	}

	variants, err := loadVariants(ctx, repo.db, []uuid.UUID{itemM.ProductVariantID})
	if err != nil {
		return nil, err
	}

	return toLineItemDomain(&itemM, variants), nil
}

// UpsertLineItem performs the increment as one INSERT .. ON CONFLICT statement.
func (repo *cartRepository) UpsertLineItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int) (*entity.CartLineItem, error) {
	now := time.Now()
	itemM := &model.CartItemModel{
		ID:               newID(),
		CartID:           cartID,
		ProductVariantID: variantID,
		Quantity:         quantity,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_variant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(itemM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to upsert line item")
	}

	var stored model.CartItemModel
	err = repo.db.WithContext(ctx).
		Where("cart_id = ? AND product_variant_id = ?", cartID, variantID).
		First(&stored).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upserted line item")
	}

	variants, err := loadVariants(ctx, repo.db, []uuid.UUID{variantID})
	if err != nil {
		return nil, err
	}

	return toLineItemDomain(&stored, variants), nil
}

func (repo *cartRepository) SetLineItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return errors.Wrapf(result.Error, "quantity %d violates cart item constraint", quantity)
		}

		return errors.Wrap(result.Error, "failed to set line item quantity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLineItemNotFound
	}

	return nil
}

func (repo *cartRepository) DeleteLineItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&model.CartItemModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete line item")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLineItemNotFound
	}

	return nil
}

func (repo *cartRepository) DeleteLineItems(ctx context.Context, cartID uuid.UUID) error {
	err := repo.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItemModel{}).Error

	return errors.Wrap(err, "failed to delete line items")
}

func (repo *cartRepository) MoveLineItem(ctx context.Context, itemID, toCartID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"cart_id": toCartID, "updated_at": time.Now()})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to move line item")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLineItemNotFound
	}

	return nil
}

// loadCarts attaches line items, oldest first, and their live variants.
func (repo *cartRepository) loadCarts(ctx context.Context, cartModels []*model.CartModel) ([]*entity.Cart, error) {
	if len(cartModels) == 0 {
		return nil, nil
	}

	cartIDs := make([]uuid.UUID, 0, len(cartModels))
	for _, cartM := range cartModels {
		cartIDs = append(cartIDs, cartM.ID)
	}

	var itemModels []*model.CartItemModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("cart_id IN ?", cartIDs).
		Order("created_at ASC, id ASC").
		Find(&itemModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load line items")
	}

	variantIDs := make([]uuid.UUID, 0, len(itemModels))
	for _, itemM := range itemModels {
		variantIDs = append(variantIDs, itemM.ProductVariantID)
	}
	variants, err := loadVariants(ctx, repo.db, variantIDs)
	if err != nil {
		return nil, err
	}

	itemsByCart := make(map[uuid.UUID][]*entity.CartLineItem, len(cartModels))
	for _, itemM := range itemModels {
		itemsByCart[itemM.CartID] = append(itemsByCart[itemM.CartID], toLineItemDomain(itemM, variants))
	}

	carts := make([]*entity.Cart, 0, len(cartModels))
	for _, cartM := range cartModels {
		cart := toCartDomain(cartM)
		cart.Items = itemsByCart[cartM.ID]
		carts = append(carts, cart)
	}

	return carts, nil
}

// --- Mapper Functions ---

func setOwner(cartM *model.CartModel, owner entity.CartOwner) {
	cartM.UserID, cartM.GuestID = nil, nil
	switch {
	case owner.IsUser():
		userID := owner.UserID
		cartM.UserID = &userID
	case owner.IsGuest():
		guestID := owner.GuestID
		cartM.GuestID = &guestID
	}
}

func toCartDomain(data *model.CartModel) *entity.Cart {
	cart := &entity.Cart{
		ID:        data.ID,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
	switch {
	case data.UserID != nil:
		cart.Owner = entity.UserOwner(*data.UserID)
	case data.GuestID != nil:
		cart.Owner = entity.GuestOwner(*data.GuestID)
	}
	if data.CouponCode != nil {
		cart.CouponCode = *data.CouponCode
	}

	return cart
}

func toLineItemDomain(data *model.CartItemModel, variants map[uuid.UUID]*entity.ProductVariant) *entity.CartLineItem {
	return &entity.CartLineItem{
		ID:               data.ID,
		CartID:           data.CartID,
		ProductVariantID: data.ProductVariantID,
		Quantity:         data.Quantity,
		Variant:          variants[data.ProductVariantID],
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}
