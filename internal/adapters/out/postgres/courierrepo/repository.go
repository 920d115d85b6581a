package courierrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCourierRepository implements CourierRepository using GORM for the
// durable courier state and a CourierLocationStore for location pings.
type GormCourierRepository struct {
	db        *gorm.DB
	tracker   aggregateTracker
	locations ports.CourierLocationStore
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(
	db *gorm.DB,
	tracker aggregateTracker,
	locations ports.CourierLocationStore,
) *GormCourierRepository {
	return &GormCourierRepository{
		db:        db,
		tracker:   tracker,
		locations: locations,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing courier to the database.
// Only the durable identity fields are written; location pings never touch
// the database.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&CourierDTO{}).
		Where("id = ?", dto.ID).
		Select("name", "approved").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a courier by ID, merging the stored identity with the
// statuses of its in-flight orders and its latest location ping.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	statuses, err := r.activeOrderStatuses(ctx, id)
	if err != nil {
		return nil, err
	}

	ping, found, err := r.locations.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, statuses, ping, found)
}

// GetAllAvailable retrieves approved couriers with no in-flight order and
// attaches the latest location ping to each. Couriers without a fresh ping
// come back with no location; the caller's eligibility check drops them.
func (r *GormCourierRepository) GetAllAvailable(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where(
			"approved AND NOT EXISTS (SELECT 1 FROM orders WHERE orders.courier_id = couriers.id AND orders.status NOT IN ?)",
			terminalStatusInts(),
		).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(dtos))
	for _, dto := range dtos {
		id, idErr := kernel.UUIDFromBytes(dto.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}

	pings, err := r.locations.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for i, dto := range dtos {
		ping, found := pings[ids[i]]
		c, convErr := toDomain(dto, nil, ping, found)
		if convErr != nil {
			return nil, convErr
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}

// activeOrderStatuses reads the statuses of the courier's non-terminal orders.
func (r *GormCourierRepository) activeOrderStatuses(
	ctx context.Context,
	id kernel.UUID,
) ([]order.Status, error) {
	var raw []int
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("courier_id = ? AND status NOT IN ?", id.Bytes(), terminalStatusInts()).
		Pluck("status", &raw).Error
	if err != nil {
		return nil, err
	}

	statuses := make([]order.Status, 0, len(raw))
	for _, s := range raw {
		statuses = append(statuses, order.Status(s))
	}

	return statuses, nil
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:       aggregate.ID().Bytes(),
		Name:     aggregate.Name(),
		Approved: aggregate.IsApproved(),
	}
}

// toDomain reconstructs a courier aggregate from the stored identity, the
// in-flight order statuses, and an optional location ping.
func toDomain(
	dto CourierDTO,
	statuses []order.Status,
	ping ports.LocationPing,
	hasPing bool,
) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoLocation
	if hasPing {
		loc := ping.Location
		location = &loc
	}

	return courier.RestoreCourier(id, dto.Name, dto.Approved, location, ping.ReportedAt, statuses)
}

func terminalStatusInts() []int {
	statuses := order.TerminalStatuses()
	ints := make([]int, 0, len(statuses))
	for _, s := range statuses {
		ints = append(ints, int(s))
	}
	return ints
}
