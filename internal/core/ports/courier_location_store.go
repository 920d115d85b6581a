package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// LocationPing is a courier position report as held by the location store.
type LocationPing struct {
	// Location is the reported position.
	Location kernel.GeoLocation

	// ReportedAt is when the courier sent the report.
	ReportedAt time.Time
}

// CourierLocationStore keeps the latest location ping per courier.
// Entries expire on their own once the ping freshness window passes,
// so a lookup never returns a stale position.
type CourierLocationStore interface {
	// Put stores the latest ping for a courier, replacing any previous one.
	Put(ctx context.Context, courierID kernel.UUID, ping LocationPing) error

	// Get returns the stored ping for a courier.
	// The second return value is false when no fresh ping exists.
	Get(ctx context.Context, courierID kernel.UUID) (LocationPing, bool, error)

	// GetMany returns the stored pings for the given couriers.
	// Couriers without a fresh ping are absent from the result.
	GetMany(ctx context.Context, courierIDs []kernel.UUID) (map[kernel.UUID]LocationPing, error)
}
