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

// mergeService implements the MergeUsecase interface.
type mergeService struct {
	txManager repository.TransactionManager
	metrics   service.MetricsRecorder
	logger    *slog.Logger
}

// MergeServiceParams holds dependencies for MergeService, injected by Fx.
type MergeServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Metrics   service.MetricsRecorder
	Logger    *slog.Logger
}

// NewMergeService is the constructor for mergeService.
func NewMergeService(params MergeServiceParams) usecase.MergeUsecase {
	return &mergeService{
		txManager: params.TxManager,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *mergeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Merge folds every line of the guest's cart into the user's cart.
//
// Both carts are locked for the whole transaction. Lines for a variant the user
// already has are summed into the user's line; other lines are re-parented. When the
// user has no cart the guest cart is handed over in place. Lines whose variant was
// deleted are dropped. The guest identity is deleted in the same transaction.
func (srv *mergeService) Merge(ctx context.Context, guestID, userID uuid.UUID) (*usecase.MergeResult, error) {
	if guestID == uuid.Nil || userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("merge needs both a guest and a user")
	}

	var result *usecase.MergeResult
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		result = &usecase.MergeResult{}

		return srv.mergeInTx(ctx, repoFactory, guestID, userID, result)
	})
	if err != nil {
		srv.metrics.MergeCompleted(ctx, service.MergeOutcomeFailed, 0)
		srv.log(ctx).Error("Guest cart merge failed",
			slog.Any("guestID", guestID),
			slog.Any("userID", userID),
			slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute cart merge transaction")
	}

	srv.metrics.MergeCompleted(ctx, result.Outcome, result.DroppedItems)
	srv.log(ctx).Info("Guest cart merged",
		slog.Any("guestID", guestID),
		slog.Any("userID", userID),
		slog.String("outcome", result.Outcome),
		slog.Int("summed", result.SummedItems),
		slog.Int("moved", result.MovedItems),
		slog.Int("dropped", result.DroppedItems))

	return result, nil
}

func (srv *mergeService) mergeInTx(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	guestID, userID uuid.UUID,
	result *usecase.MergeResult,
) error {
	cartRepo := repoFactory.NewCartRepository()
	guestOwner := entity.GuestOwner(guestID)
	userOwner := entity.UserOwner(userID)

	// Guest before user: every merge takes the locks in the same order.
	guestCarts, err := cartRepo.FindByOwnerForUpdate(ctx, guestOwner)
	if err != nil {
		return errors.Wrap(err, "failed to lock guest cart")
	}

	if liveItemCount(guestCarts) == 0 {
		for _, cart := range guestCarts {
			if err := cartRepo.Delete(ctx, cart.ID); err != nil {
				return errors.Wrap(err, "failed to delete empty guest cart")
			}
		}
		result.Outcome = service.MergeOutcomeNothingToMerge

		return srv.deleteGuest(ctx, repoFactory, guestID)
	}

	userCarts, err := cartRepo.FindByOwnerForUpdate(ctx, userOwner)
	if err != nil {
		return errors.Wrap(err, "failed to lock user cart")
	}
	target := pickOwnerCart(ctx, srv.log(ctx), srv.metrics, userOwner, userCarts)
	targetExisted := target != nil

	// Oldest guest cart first so a legacy duplicate is folded in before the newest.
	for i := len(guestCarts) - 1; i >= 0; i-- {
		guestCart := guestCarts[i]

		live, err := srv.dropStaleItems(ctx, cartRepo, guestCart, result)
		if err != nil {
			return err
		}

		if target == nil {
			if err := cartRepo.ReassignOwner(ctx, guestCart.ID, userOwner); err != nil {
				return errors.Wrap(err, "failed to reassign guest cart")
			}
			guestCart.Owner = userOwner
			guestCart.Items = live
			target = guestCart
			result.MovedItems += len(live)
			result.Outcome = service.MergeOutcomeReassigned

			continue
		}

		if err := srv.foldInto(ctx, cartRepo, guestCart, live, target, result); err != nil {
			return err
		}
		result.Outcome = service.MergeOutcomeMerged
	}

	if targetExisted {
		if err := cartRepo.Touch(ctx, target.ID); err != nil {
			return errors.Wrap(err, "failed to touch user cart")
		}
	}
	result.CartID = target.ID

	return srv.deleteGuest(ctx, repoFactory, guestID)
}

// dropStaleItems deletes lines whose variant no longer exists and returns the rest.
func (srv *mergeService) dropStaleItems(
	ctx context.Context,
	cartRepo repository.CartRepository,
	cart *entity.Cart,
	result *usecase.MergeResult,
) ([]*entity.CartLineItem, error) {
	live := make([]*entity.CartLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if !item.IsStale() {
			live = append(live, item)

			continue
		}

		srv.log(ctx).Warn("Dropping guest line item for deleted variant",
			slog.Any("cartID", cart.ID),
			slog.Any("lineItemID", item.ID),
			slog.Any("variantID", item.ProductVariantID),
			slog.Any("error", domainerrors.ErrStaleReference))

		if err := cartRepo.DeleteLineItem(ctx, cart.ID, item.ID); err != nil && !errors.Is(err, repository.ErrLineItemNotFound) {
			return nil, errors.Wrap(err, "failed to drop stale line item")
		}
		result.DroppedItems++
	}

	return live, nil
}

// foldInto sums or moves each live guest line into target, then deletes the guest cart.
func (srv *mergeService) foldInto(
	ctx context.Context,
	cartRepo repository.CartRepository,
	guestCart *entity.Cart,
	live []*entity.CartLineItem,
	target *entity.Cart,
	result *usecase.MergeResult,
) error {
	for _, item := range live {
		if existing := target.ItemByVariant(item.ProductVariantID); existing != nil {
			if _, err := cartRepo.UpsertLineItem(ctx, target.ID, item.ProductVariantID, item.Quantity); err != nil {
				return errors.Wrap(err, "failed to sum merged line item")
			}
			if err := cartRepo.DeleteLineItem(ctx, guestCart.ID, item.ID); err != nil {
				return errors.Wrap(err, "failed to delete summed guest line item")
			}
			existing.Quantity += item.Quantity
			result.SummedItems++

			continue
		}

		if err := cartRepo.MoveLineItem(ctx, item.ID, target.ID); err != nil {
			return errors.Wrap(err, "failed to move guest line item")
		}
		item.CartID = target.ID
		target.Items = append(target.Items, item)
		result.MovedItems++
	}

	return errors.Wrap(cartRepo.Delete(ctx, guestCart.ID), "failed to delete merged guest cart")
}

func (srv *mergeService) deleteGuest(ctx context.Context, repoFactory repository.RepositoryFactory, guestID uuid.UUID) error {
	err := repoFactory.NewGuestRepository().Delete(ctx, guestID)
	if err != nil && !errors.Is(err, repository.ErrGuestNotFound) {
		return errors.Wrap(err, "failed to delete guest identity")
	}

	return nil
}

func liveItemCount(carts []*entity.Cart) int {
	count := 0
	for _, cart := range carts {
		for _, item := range cart.Items {
			if !item.IsStale() {
				count++
			}
		}
	}

	return count
}
