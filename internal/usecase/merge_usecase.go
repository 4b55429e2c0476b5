package usecase

import (
	"context"

	"github.com/google/uuid"
)

// MergeResult summarises what a merge did.
type MergeResult struct {
	Outcome string    // one of the service.MergeOutcome* values
	CartID  uuid.UUID // the user's cart after the merge, uuid.Nil if nothing was merged

	SummedItems  int // guest lines folded into an existing user line
	MovedItems   int // guest lines re-parented to the user cart
	DroppedItems int // guest lines whose variant no longer exists
}

// MergeUsecase folds a guest's cart into a user's cart.
type MergeUsecase interface {
	// Merge runs as one transaction and always disposes of the guest identity on success.
	Merge(ctx context.Context, guestID, userID uuid.UUID) (*MergeResult, error)
}
