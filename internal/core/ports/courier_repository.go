// Package ports defines repository and gateway interfaces for the dispatch domain.
// These interfaces establish contracts between the domain layer and infrastructure,
// enabling dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
// Provides methods for storing, retrieving, and querying courier entities
// together with the statuses of their currently assigned orders.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	// The courier must exist in the repository and be valid.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	// Returns the complete courier including its last location ping
	// and the statuses of orders currently assigned to it.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves every approved courier that has no order
	// in flight, with the last known location ping attached when one exists.
	//
	// Business Rules:
	//   - Unapproved couriers: never returned
	//   - Couriers with a non-terminal order: never returned
	//   - Couriers without a location ping: returned with a nil location;
	//     callers filter those out via the courier's eligibility check
	//
	// The returned set is a superset of the dispatch candidates: ping
	// freshness is evaluated by the caller against the current time,
	// because ping staleness is a property of the evaluation moment,
	// not of the stored state.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)
}
