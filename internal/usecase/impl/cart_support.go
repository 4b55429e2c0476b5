package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
)

// pickOwnerCart chooses the cart to act on from an owner lookup ordered newest first.
// More than one cart for an owner breaks the one-cart invariant; the newest wins and
// the anomaly is reported instead of failing the request.
func pickOwnerCart(ctx context.Context, logger *slog.Logger, metrics service.MetricsRecorder, owner entity.CartOwner, carts []*entity.Cart) *entity.Cart {
	if len(carts) == 0 {
		return nil
	}

	if len(carts) > 1 {
		ids := make([]string, 0, len(carts))
		for _, cart := range carts {
			ids = append(ids, cart.ID.String())
		}
		logger.Error("Owner has more than one cart, using the most recently updated",
			slog.String("owner", owner.String()),
			slog.Any("cartIDs", ids))
		metrics.OwnerConflict(ctx)
	}

	return carts[0]
}

// redeemableCoupon loads the coupon behind code and returns it only if it can still be
// applied. A coupon that went inactive or expired after being attached yields nil.
func redeemableCoupon(ctx context.Context, couponRepo repository.CouponRepository, code string, now time.Time) (*entity.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	coupon, err := couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to load coupon")
	}

	if !coupon.IsRedeemable(now) {
		return nil, nil
	}

	return coupon, nil
}
