package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for order persistence.
var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when an order already exists for the checkout session.
	ErrDuplicateOrder = errors.New("order already exists for session")
	// ErrStatusChanged is returned when an order is no longer in the expected status.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

// OrderRepository persists placed orders and their item snapshots.
type OrderRepository interface {
	// Create inserts the order and its items. It returns ErrDuplicateOrder when the
	// session reference has already produced an order.
	Create(ctx context.Context, order *entity.Order) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindBySessionRef reads from the primary so a just-committed order is visible.
	FindBySessionRef(ctx context.Context, sessionRef string) (*entity.Order, error)

	// FindByUser lists a user's orders, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)

	// UpdateStatus changes the status only if it is still from; otherwise ErrStatusChanged.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) error
}
