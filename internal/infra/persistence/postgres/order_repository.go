package postgres

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const idxOrdersSessionRef = "idx_orders_session_ref"

// orderRepository implements the domain.OrderRepository interface using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order row and its items in one statement batch.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM, err := fromOrderDomain(order)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueViolationOn(err, idxOrdersSessionRef) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateOrder
		}

		return errors.Wrap(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt
	for i, itemM := range orderM.Items {
		order.Items[i].ID = itemM.ID
		order.Items[i].OrderID = orderM.ID
	}

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx), "id = ?", id)
}

func (repo *orderRepository) FindBySessionRef(ctx context.Context, sessionRef string) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx).Clauses(dbresolver.Write), "session_ref = ?", sessionRef)
}

func (repo *orderRepository) findOne(query *gorm.DB, cond string, arg any) (*entity.Order, error) {
	var orderM model.OrderModel
	err := query.Preload("Items", orderItemsOrder).Where(cond, arg).First(&orderM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM)
}

func (repo *orderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	var orderModels []*model.OrderModel
	err := repo.db.WithContext(ctx).
		Preload("Items", orderItemsOrder).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orderModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders by user")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		order, err := toOrderDomain(orderM)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// UpdateStatus is a compare-and-set on the status column.
func (repo *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now()})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order status")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check order existence")
	}
	if count == 0 {
		return repository.ErrOrderNotFound
	}

	return repository.ErrStatusChanged
}

func orderItemsOrder(db *gorm.DB) *gorm.DB {
	return db.Order("product_name ASC, id ASC")
}

// --- Mapper Functions ---

func fromOrderDomain(order *entity.Order) (*model.OrderModel, error) {
	shipping, err := marshalAddress(order.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing, err := marshalAddress(order.BillingAddress)
	if err != nil {
		return nil, err
	}

	orderM := &model.OrderModel{
		ID:              ensureID(order.ID),
		UserID:          order.UserID,
		SessionRef:      order.SessionRef,
		Status:          string(order.Status),
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		Shipping:        order.Shipping,
		Tax:             order.Tax,
		Total:           order.Total,
		Currency:        order.Currency,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.CouponCode != "" {
		code := order.CouponCode
		orderM.CouponCode = &code
	}

	orderM.Items = make([]model.OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		orderM.Items = append(orderM.Items, model.OrderItemModel{
			ID:               ensureID(item.ID),
			OrderID:          orderM.ID,
			ProductVariantID: item.ProductVariantID,
			ProductName:      item.ProductName,
			ColorName:        item.ColorName,
			SizeName:         item.SizeName,
			UnitPrice:        item.UnitPrice,
			Quantity:         item.Quantity,
			LineTotal:        item.LineTotal,
		})
	}

	return orderM, nil
}

func toOrderDomain(data *model.OrderModel) (*entity.Order, error) {
	shipping, err := unmarshalAddress(data.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing, err := unmarshalAddress(data.BillingAddress)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		ID:              data.ID,
		UserID:          data.UserID,
		SessionRef:      data.SessionRef,
		Status:          entity.OrderStatus(data.Status),
		Subtotal:        data.Subtotal,
		Discount:        data.Discount,
		Shipping:        data.Shipping,
		Tax:             data.Tax,
		Total:           data.Total,
		Currency:        data.Currency,
		CustomerEmail:   data.CustomerEmail,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
	if data.CouponCode != nil {
		order.CouponCode = *data.CouponCode
	}

	order.Items = make([]*entity.OrderItem, 0, len(data.Items))
	for _, itemM := range data.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			ID:               itemM.ID,
			OrderID:          itemM.OrderID,
			ProductVariantID: itemM.ProductVariantID,
			ProductName:      itemM.ProductName,
			ColorName:        itemM.ColorName,
			SizeName:         itemM.SizeName,
			UnitPrice:        itemM.UnitPrice,
			Quantity:         itemM.Quantity,
			LineTotal:        itemM.LineTotal,
		})
	}

	return order, nil
}

func marshalAddress(address *entity.PostalAddress) (datatypes.JSON, error) {
	if address.IsZero() {
		return nil, nil
	}

	raw, err := json.Marshal(address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode address")
	}

	return datatypes.JSON(raw), nil
}

func unmarshalAddress(raw datatypes.JSON) (*entity.PostalAddress, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var address entity.PostalAddress
	if err := json.Unmarshal(raw, &address); err != nil {
		return nil, errors.Wrap(err, "failed to decode address")
	}

	return &address, nil
}
