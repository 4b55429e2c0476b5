package service

import "context"

// Merge outcomes reported to metrics and logs.
const (
	MergeOutcomeNothingToMerge = "nothing_to_merge"
	MergeOutcomeReassigned     = "reassigned"
	MergeOutcomeMerged         = "merged"
	MergeOutcomeFailed         = "failed"
)

// MetricsRecorder receives business counters. Implementations must be safe for concurrent use
// and must never fail the caller.
type MetricsRecorder interface {
	CartMutation(ctx context.Context, operation string)
	MergeCompleted(ctx context.Context, outcome string, droppedItems int)
	OwnerConflict(ctx context.Context)
	CheckoutSessionCreated(ctx context.Context)
	OrderPlaced(ctx context.Context, totalMinor int64, currency string)
	// OrphanedPayment counts completed payments whose cart no longer exists.
	OrphanedPayment(ctx context.Context)
	WishlistChange(ctx context.Context, operation string)
}
