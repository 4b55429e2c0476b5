package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	qrService service.QRCodeService
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		qrService: params.QRService,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetOrder hides orders of other users behind the same not-found answer.
func (srv *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.BelongsTo(userID) {
		srv.log(ctx).Warn("Order requested by non-owner", slog.Any("orderID", orderID), slog.Any("userID", userID))

		return nil, domainerrors.ErrOrderNotFound.WrapMessage("order not visible to user")
	}

	return order, nil
}

func (srv *orderService) GetOrderBySession(ctx context.Context, sessionRef string) (*entity.Order, error) {
	order, err := srv.orderRepo.FindBySessionRef(ctx, sessionRef)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound.WrapMessage("no order for session")
		}

		return nil, errors.Wrap(err, "failed to find order by session")
	}

	return order, nil
}

func (srv *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list orders", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find orders by user")
	}

	return orders, nil
}

// UpdateOrderStatus moves an order along its status machine. Nothing else about an order changes.
func (srv *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	if !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown order status")
	}

	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return domainerrors.ErrOrderNotFound.WrapMessage("cannot update status")
			}

			return errors.Wrap(err, "failed to find order")
		}

		if !order.Status.CanTransitionTo(status) {
			return domainerrors.ErrInvalidStatusTransition.WrapMessage(string(order.Status) + " -> " + string(status))
		}

		if err := orderRepo.UpdateStatus(ctx, orderID, order.Status, status); err != nil {
			if errors.Is(err, repository.ErrStatusChanged) {
				return domainerrors.ErrConflict.WrapMessage("order status changed concurrently")
			}

			return errors.Wrap(err, "failed to update order status")
		}

		order.Status = status
		updated = order

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Order status update failed", slog.Any("orderID", orderID), slog.String("status", string(status)), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order status transaction")
	}

	srv.log(ctx).Info("Order status updated", slog.Any("orderID", orderID), slog.String("status", string(status)))

	return updated, nil
}

func (srv *orderService) ReceiptQR(ctx context.Context, userID, orderID uuid.UUID) ([]byte, error) {
	order, err := srv.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateOrderReceiptQR(order.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate receipt QR code")
	}

	return png, nil
}

func (srv *orderService) LookupReceipt(ctx context.Context, qrData string) (*entity.Order, error) {
	orderID, err := srv.qrService.ParseOrderReceiptQR(qrData)
	if err != nil {
		return nil, domainerrors.ErrReceiptInvalid.WrapMessage(err.Error())
	}

	return srv.findOrder(ctx, orderID)
}

func (srv *orderService) findOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound.WrapMessage("order lookup")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return order, nil
}
