// Package queries contains read-only operations over the dispatch state.
// Query handlers bypass the aggregate layer and read projections straight
// from the database, the read side of the CQRS split.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveDispatchesQueryIsNotConstructed = errors.New(
	"GetActiveDispatchesQuery must be created via NewGetActiveDispatchesQuery constructor",
)

// GetActiveDispatchesQuery retrieves every order currently waiting for a
// courier. Used by the operations dashboard and by the recovery sweep to
// see which orders still need a running search.
//
// Example:
//
//	query := NewGetActiveDispatchesQuery()
//	handler := NewGetActiveDispatchesQueryHandler(db)
//
//	dispatches, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get active dispatches: %w", err)
//	}
type GetActiveDispatchesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveDispatchesQuery creates a query for orders awaiting a courier.
// This is a parameterless query.
func NewGetActiveDispatchesQuery() GetActiveDispatchesQuery {
	return GetActiveDispatchesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveDispatchesQueryIsNotConstructed if validation fails.
func (q GetActiveDispatchesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDispatchesQueryIsNotConstructed)
}

// GetActiveDispatchesQueryResponse represents one order waiting for a courier.
type GetActiveDispatchesQueryResponse struct {
	ID     kernel.UUID
	Pickup kernel.GeoLocation
}
