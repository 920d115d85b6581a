package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDispatchesQueryHandler reads orders awaiting a courier from the
// database. An order is awaiting a courier when it is ready for pickup and
// has no courier assigned.
type GetActiveDispatchesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDispatchesQueryHandler creates a handler for active dispatch queries.
// Requires a GORM database connection for query execution.
func NewGetActiveDispatchesQueryHandler(db *gorm.DB) GetActiveDispatchesQueryHandler {
	return GetActiveDispatchesQueryHandler{db: db}
}

// Handle executes the query.
// Results are sorted by order ID for consistent output.
func (h GetActiveDispatchesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDispatchesQuery,
) ([]GetActiveDispatchesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	dispatches := make([]GetActiveDispatchesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			pickup_latitude,
			pickup_longitude
		FROM orders
		WHERE status = ? AND courier_id IS NULL
		ORDER BY id
	`, order.ReadyForPickup).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var latitude, longitude float64

		err = rows.Scan(
			&id,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		pickup, locErr := kernel.NewGeoLocation(latitude, longitude)
		if locErr != nil {
			return nil, locErr
		}

		dispatches = append(dispatches, GetActiveDispatchesQueryResponse{
			ID:     orderID,
			Pickup: pickup,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return dispatches, nil
}
