package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// OrderUsecase is the read side of checkout plus admin status changes.
type OrderUsecase interface {
	// GetOrder returns the order only if it belongs to userID.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
	GetOrderBySession(ctx context.Context, sessionRef string) (*entity.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error)

	// ReceiptQR renders a PNG QR code for one of the user's orders.
	ReceiptQR(ctx context.Context, userID, orderID uuid.UUID) ([]byte, error)

	// LookupReceipt resolves scanned receipt content to its order.
	LookupReceipt(ctx context.Context, qrData string) (*entity.Order, error)
}
