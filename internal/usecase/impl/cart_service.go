package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Cart mutation names reported to metrics.
const (
	cartOpAdd          = "add"
	cartOpUpdate       = "update"
	cartOpRemove       = "remove"
	cartOpClear        = "clear"
	cartOpApplyCoupon  = "apply_coupon"
	cartOpRemoveCoupon = "remove_coupon"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	txManager   repository.TransactionManager
	cartRepo    repository.CartRepository
	variantRepo repository.VariantRepository
	couponRepo  repository.CouponRepository
	calculator  *pricing.Calculator
	metrics     service.MetricsRecorder
	now         func() time.Time
	logger      *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	CartRepo    repository.CartRepository
	VariantRepo repository.VariantRepository
	CouponRepo  repository.CouponRepository
	Calculator  *pricing.Calculator
	Metrics     service.MetricsRecorder
	Logger      *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		txManager:   params.TxManager,
		cartRepo:    params.CartRepo,
		variantRepo: params.VariantRepo,
		couponRepo:  params.CouponRepo,
		calculator:  params.Calculator,
		metrics:     params.Metrics,
		now:         time.Now,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCart loads the owner's cart. It never creates one.
func (srv *cartService) GetCart(ctx context.Context, owner entity.CartOwner) (*usecase.CartView, error) {
	if owner.IsZero() {
		return srv.view(ctx, nil)
	}

	carts, err := srv.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		srv.log(ctx).Error("Failed to load cart", slog.String("owner", owner.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find cart by owner")
	}

	return srv.view(ctx, pickOwnerCart(ctx, srv.log(ctx), srv.metrics, owner, carts))
}

// AddItem creates the owner's cart if needed and adds quantity to the variant's line.
func (srv *cartService) AddItem(ctx context.Context, owner entity.CartOwner, input *usecase.AddItemInput) (*usecase.CartView, error) {
	if owner.IsZero() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("cart owner is required")
	}
	if input.Quantity < 1 {
		return nil, domainerrors.ErrInvalidQuantity.WrapMessage("add item rejected")
	}

	if _, err := srv.variantRepo.FindByID(ctx, input.VariantID); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			return nil, domainerrors.ErrVariantNotFound.WrapMessage("add item rejected")
		}

		return nil, errors.Wrap(err, "failed to find variant")
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()

		cart, err := cartRepo.GetOrCreate(ctx, owner)
		if err != nil {
			return errors.Wrap(err, "failed to get or create cart")
		}

		if _, err := cartRepo.UpsertLineItem(ctx, cart.ID, input.VariantID, input.Quantity); err != nil {
			return errors.Wrap(err, "failed to upsert line item")
		}

		return errors.Wrap(cartRepo.Touch(ctx, cart.ID), "failed to touch cart")
	})
	if err != nil {
		srv.log(ctx).Error("Failed to add cart item",
			slog.String("owner", owner.String()),
			slog.Any("variantID", input.VariantID),
			slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute add item transaction")
	}

	srv.metrics.CartMutation(ctx, cartOpAdd)

	return srv.GetCart(ctx, owner)
}

// UpdateItem overwrites the quantity of a line in the owner's cart.
func (srv *cartService) UpdateItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID, quantity int) (*usecase.CartView, error) {
	if quantity <= 0 {
		return srv.RemoveItem(ctx, owner, itemID)
	}

	err := srv.withOwnedLine(ctx, owner, itemID, func(cartRepo repository.CartRepository, cart *entity.Cart) error {
		return errors.Wrap(cartRepo.SetLineItemQuantity(ctx, cart.ID, itemID, quantity), "failed to set line item quantity")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update cart item")
	}

	srv.metrics.CartMutation(ctx, cartOpUpdate)

	return srv.GetCart(ctx, owner)
}

// RemoveItem deletes a line from the owner's cart. The cart itself is kept.
func (srv *cartService) RemoveItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID) (*usecase.CartView, error) {
	err := srv.withOwnedLine(ctx, owner, itemID, func(cartRepo repository.CartRepository, cart *entity.Cart) error {
		return errors.Wrap(cartRepo.DeleteLineItem(ctx, cart.ID, itemID), "failed to delete line item")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to remove cart item")
	}

	srv.metrics.CartMutation(ctx, cartOpRemove)

	return srv.GetCart(ctx, owner)
}

// withOwnedLine locks the owner's cart and runs fn only if itemID is one of its lines.
// A line belonging to somebody else is reported as not found.
func (srv *cartService) withOwnedLine(
	ctx context.Context,
	owner entity.CartOwner,
	itemID uuid.UUID,
	fn func(cartRepo repository.CartRepository, cart *entity.Cart) error,
) error {
	if owner.IsZero() {
		return domainerrors.ErrLineItemNotFound.WrapMessage("no cart owner")
	}

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()

		carts, err := cartRepo.FindByOwnerForUpdate(ctx, owner)
		if err != nil {
			return errors.Wrap(err, "failed to lock cart")
		}

		cart := pickOwnerCart(ctx, srv.log(ctx), srv.metrics, owner, carts)
		if cart.Item(itemID) == nil {
			return domainerrors.ErrLineItemNotFound.WrapMessage("line item is not in the owner's cart")
		}

		if err := fn(cartRepo, cart); err != nil {
			if errors.Is(err, repository.ErrLineItemNotFound) {
				return domainerrors.ErrLineItemNotFound.WrapMessage("line item disappeared")
			}

			return err
		}

		return errors.Wrap(cartRepo.Touch(ctx, cart.ID), "failed to touch cart")
	})
}

// Clear removes every line and the coupon but keeps the cart bound to its owner.
func (srv *cartService) Clear(ctx context.Context, owner entity.CartOwner, cartID uuid.UUID) (*usecase.CartView, error) {
	err := srv.withOwnedCart(ctx, owner, cartID, func(cartRepo repository.CartRepository, cart *entity.Cart) error {
		if err := cartRepo.DeleteLineItems(ctx, cart.ID); err != nil {
			return errors.Wrap(err, "failed to delete line items")
		}

		return errors.Wrap(cartRepo.SetCoupon(ctx, cart.ID, ""), "failed to clear coupon")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to clear cart")
	}

	srv.metrics.CartMutation(ctx, cartOpClear)
	srv.log(ctx).Info("Cart cleared", slog.Any("cartID", cartID), slog.String("owner", owner.String()))

	return srv.GetCart(ctx, owner)
}

// ApplyCoupon attaches a redeemable coupon to the owner's cart.
func (srv *cartService) ApplyCoupon(ctx context.Context, owner entity.CartOwner, code string) (*usecase.CartView, error) {
	coupon, err := redeemableCoupon(ctx, srv.couponRepo, code, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate coupon")
	}
	if coupon == nil {
		return nil, domainerrors.ErrCouponInvalid.WrapMessage("coupon cannot be applied")
	}

	err = srv.withOwnedCart(ctx, owner, uuid.Nil, func(cartRepo repository.CartRepository, cart *entity.Cart) error {
		return errors.Wrap(cartRepo.SetCoupon(ctx, cart.ID, coupon.Code), "failed to set coupon")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply coupon")
	}

	srv.metrics.CartMutation(ctx, cartOpApplyCoupon)

	return srv.GetCart(ctx, owner)
}

// RemoveCoupon detaches any coupon from the owner's cart.
func (srv *cartService) RemoveCoupon(ctx context.Context, owner entity.CartOwner) (*usecase.CartView, error) {
	err := srv.withOwnedCart(ctx, owner, uuid.Nil, func(cartRepo repository.CartRepository, cart *entity.Cart) error {
		return errors.Wrap(cartRepo.SetCoupon(ctx, cart.ID, ""), "failed to clear coupon")
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to remove coupon")
	}

	srv.metrics.CartMutation(ctx, cartOpRemoveCoupon)

	return srv.GetCart(ctx, owner)
}

// withOwnedCart locks the owner's cart and runs fn. When cartID is set it must match
// the owner's cart.
func (srv *cartService) withOwnedCart(
	ctx context.Context,
	owner entity.CartOwner,
	cartID uuid.UUID,
	fn func(cartRepo repository.CartRepository, cart *entity.Cart) error,
) error {
	if owner.IsZero() {
		return domainerrors.ErrCartNotFound.WrapMessage("no cart owner")
	}

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()

		carts, err := cartRepo.FindByOwnerForUpdate(ctx, owner)
		if err != nil {
			return errors.Wrap(err, "failed to lock cart")
		}

		var cart *entity.Cart
		if cartID == uuid.Nil {
			cart = pickOwnerCart(ctx, srv.log(ctx), srv.metrics, owner, carts)
		} else {
			for _, candidate := range carts {
				if candidate.ID == cartID {
					cart = candidate

					break
				}
			}
		}
		if cart == nil {
			return domainerrors.ErrCartNotFound.WrapMessage("owner has no such cart")
		}

		if err := fn(cartRepo, cart); err != nil {
			return err
		}

		return errors.Wrap(cartRepo.Touch(ctx, cart.ID), "failed to touch cart")
	})
}

// view prices a loaded cart. Totals are recomputed on every read.
func (srv *cartService) view(ctx context.Context, cart *entity.Cart) (*usecase.CartView, error) {
	if cart == nil {
		return &usecase.CartView{Totals: srv.calculator.ComputeTotals(nil, nil)}, nil
	}

	lines, stale, err := pricing.CartLines(cart.Items)
	if err != nil {
		return nil, errors.Wrap(err, "failed to price cart")
	}

	coupon, err := redeemableCoupon(ctx, srv.couponRepo, cart.CouponCode, srv.now())
	if err != nil {
		srv.log(ctx).Warn("Coupon lookup failed, pricing without discount", slog.Any("cartID", cart.ID), slog.Any("error", err))
		coupon = nil
	}

	if len(stale) > 0 {
		srv.log(ctx).Debug("Cart holds items for deleted variants", slog.Any("cartID", cart.ID), slog.Int("count", len(stale)))
	}

	return &usecase.CartView{
		Cart:       cart,
		Totals:     srv.calculator.ComputeTotals(lines, coupon),
		Coupon:     coupon,
		StaleItems: stale,
	}, nil
}
