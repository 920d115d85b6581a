package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and conditionally mutating
// order entities based on their status and assignment state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns the complete order with its current status and assignment.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// TryAssignCourier atomically writes the courier assignment onto the
	// order, but only if the order still has no courier and is not in a
	// terminal status. The whole check-and-write executes as a single
	// conditional UPDATE so concurrent assignment attempts cannot both
	// succeed.
	//
	// Returns true when this call performed the assignment, false when
	// the condition no longer held (another writer won, or the order
	// reached a terminal status). False is not an error: the caller
	// decides whether to retry or give up.
	TryAssignCourier(ctx context.Context, orderID kernel.UUID, courierID kernel.UUID) (bool, error)

	// TryReject atomically moves the order into the given terminal
	// rejection status, but only if the order still has no courier and
	// is not already terminal. Same conditional UPDATE discipline as
	// TryAssignCourier.
	//
	// Returns true when this call performed the transition, false when
	// the condition no longer held.
	TryReject(ctx context.Context, orderID kernel.UUID, status order.Status) (bool, error)

	// GetAllAwaitingCourier retrieves every order that is ready for
	// pickup but has no courier assigned yet. Used by the recovery
	// sweep to re-enqueue dispatches after a process restart.
	GetAllAwaitingCourier(ctx context.Context) ([]*order.Order, error)
}
