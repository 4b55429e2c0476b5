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

// Wishlist operations reported to metrics.
const (
	wishlistOpAdd    = "add"
	wishlistOpRemove = "remove"
)

// wishlistService implements the WishlistUsecase interface.
type wishlistService struct {
	txManager    repository.TransactionManager
	wishlistRepo repository.WishlistRepository
	metrics      service.MetricsRecorder
	logger       *slog.Logger
}

// WishlistServiceParams holds dependencies for WishlistService, injected by Fx.
type WishlistServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	WishlistRepo repository.WishlistRepository
	Metrics      service.MetricsRecorder
	Logger       *slog.Logger
}

// NewWishlistService is the constructor for wishlistService.
func NewWishlistService(params WishlistServiceParams) usecase.WishlistUsecase {
	return &wishlistService{
		txManager:    params.TxManager,
		wishlistRepo: params.WishlistRepo,
		metrics:      params.Metrics,
		logger:       params.Logger,
	}
}

func (srv *wishlistService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	items, err := srv.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list wishlist")
	}

	return items, nil
}

func (srv *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	added, err := srv.wishlistRepo.Add(ctx, userID, productID)
	if err != nil {
		return nil, wishlistError(err, "failed to add to wishlist")
	}
	if added {
		srv.metrics.WishlistChange(ctx, wishlistOpAdd)
		srv.log(ctx).Debug("Product saved to wishlist", slog.Any("productID", productID))
	}

	return &usecase.WishlistStatus{ProductID: productID, InWishlist: true}, nil
}

func (srv *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	removed, err := srv.wishlistRepo.Remove(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to remove from wishlist")
	}
	if removed {
		srv.metrics.WishlistChange(ctx, wishlistOpRemove)
		srv.log(ctx).Debug("Product removed from wishlist", slog.Any("productID", productID))
	}

	return &usecase.WishlistStatus{ProductID: productID, InWishlist: false}, nil
}

func (srv *wishlistService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	found, err := srv.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check wishlist")
	}

	return found, nil
}

// Toggle deletes first and inserts only when nothing was deleted, so two racing
// toggles never leave a duplicate row.
func (srv *wishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	status := &usecase.WishlistStatus{ProductID: productID}
	op := wishlistOpRemove

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		wishlist := repos.NewWishlistRepository()

		removed, err := wishlist.Remove(ctx, userID, productID)
		if err != nil {
			return errors.Wrap(err, "failed to remove from wishlist")
		}
		if removed {
			return nil
		}

		if _, err := wishlist.Add(ctx, userID, productID); err != nil {
			return wishlistError(err, "failed to add to wishlist")
		}
		status.InWishlist = true
		op = wishlistOpAdd

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.metrics.WishlistChange(ctx, op)
	srv.log(ctx).Debug("Wishlist toggled", slog.Any("productID", productID), slog.Bool("inWishlist", status.InWishlist))

	return status, nil
}

func wishlistError(err error, message string) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return domainerrors.ErrProductNotFound.WrapMessage(message)
	}

	return errors.Wrap(err, message)
}
