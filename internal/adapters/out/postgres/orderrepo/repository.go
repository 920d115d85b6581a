package orderrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
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

// Update saves an existing order to the database.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// TryAssignCourier conditionally writes the courier assignment.
// The condition and the write happen in one UPDATE, so of any number of
// concurrent claims for the same order at most one sees RowsAffected == 1.
func (r *GormOrderRepository) TryAssignCourier(
	ctx context.Context,
	orderID kernel.UUID,
	courierID kernel.UUID,
) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}
	if err := courierID.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND courier_id IS NULL AND status NOT IN ?", orderID.Bytes(), terminalStatusInts()).
		Update("courier_id", courierID.Bytes())
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// TryReject conditionally moves the order into a terminal rejection status.
// Same single-UPDATE discipline as TryAssignCourier: an order that already
// has a courier or already reached a terminal status is left untouched.
func (r *GormOrderRepository) TryReject(
	ctx context.Context,
	orderID kernel.UUID,
	status order.Status,
) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}
	if err := status.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND courier_id IS NULL AND status NOT IN ?", orderID.Bytes(), terminalStatusInts()).
		Update("status", int(status))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// GetAllAwaitingCourier retrieves all orders ready for pickup with no courier.
func (r *GormOrderRepository) GetAllAwaitingCourier(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND courier_id IS NULL", order.ReadyForPickup).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func terminalStatusInts() []int {
	statuses := order.TerminalStatuses()
	ints := make([]int, 0, len(statuses))
	for _, s := range statuses {
		ints = append(ints, int(s))
	}
	return ints
}
