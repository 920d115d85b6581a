package order

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrCourierAlreadyAssigned is returned when attempting to assign a courier
	// to an order that already has one. Assignment is at-most-once: once the
	// courier reference moves from nil to a value it is never overwritten.
	ErrCourierAlreadyAssigned = errors.New("order already has an assigned courier")
)

// Order represents a dispatchable delivery order. It is the aggregate root that
// manages the order lifecycle from placement through courier assignment to a
// terminal outcome.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a valid pickup location
//   - Status transitions follow the state machine defined on Status
//   - The courier reference only ever transitions from nil to a value
//     (at-most-once assignment); it is never overwritten
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// courierID is the assigned courier's ID (nil if unassigned)
	courierID *kernel.UUID

	// pickupLocation is where the courier collects the order
	pickupLocation kernel.GeoLocation

	// status represents the current state in the order lifecycle
	status Status

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order instance with validation. The order starts in
// Placed status with no courier assigned.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - pickupLocation: Restaurant location with validated coordinates
//
// Returns:
//   - *Order: The created order if all validations pass
//   - error: Validation error if any parameter is invalid
func NewOrder(id kernel.UUID, pickupLocation kernel.GeoLocation) (*Order, error) {
	order := &Order{
		status:        Placed,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setPickupLocation(pickupLocation),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persisted state.
// Unlike NewOrder it accepts an arbitrary valid status and an optional courier,
// and verifies that the status/courier combination is consistent.
//
// This is the reconstruction path used by repositories; it performs the full
// invariant check so corrupt rows never become live aggregates.
func RestoreOrder(
	id kernel.UUID,
	pickupLocation kernel.GeoLocation,
	status Status,
	courierID *kernel.UUID,
) (*Order, error) {
	order := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setPickupLocation(pickupLocation),
		status.Validate(),
		status.ValidateCanHaveCourier(courierID != nil),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
	}

	order.status = status
	order.courierID = courierID
	return order, nil
}

// Validate ensures the Order instance was properly constructed.
// This prevents bypassing validation by directly instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// PickupLocation returns the location the courier collects the order from.
func (o *Order) PickupLocation() kernel.GeoLocation {
	return o.pickupLocation
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID.
// Returns nil if no courier is assigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// AssignCourier records the courier matched to this order.
//
// This method enforces the following business rules:
//   - The courier ID must be valid
//   - No courier may already be assigned (at-most-once assignment)
//   - The order must be in a non-terminal status
//
// Assignment does not change the order's status; the status moves to
// Delivering separately when the courier picks the order up.
//
// Returns ErrCourierAlreadyAssigned if a courier is already set.
func (o *Order) AssignCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}

	if err := o.status.ValidateAssignCourier(); err != nil {
		return err
	}

	o.courierID = &courierID
	return nil
}

// StartPreparing marks the order as accepted by the restaurant.
func (o *Order) StartPreparing() error {
	newStatus, err := o.status.StartPreparing()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkReadyForPickup marks the order as ready for courier pickup.
func (o *Order) MarkReadyForPickup() error {
	newStatus, err := o.status.MarkReadyForPickup()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// StartDelivery transitions the order to Delivering.
//
// Business rules:
//   - A courier must be assigned
//   - The prior status must be ReadyForPickup
func (o *Order) StartDelivery() error {
	if o.courierID == nil {
		return errs.NewValueIsRequiredError("courierID")
	}

	newStatus, err := o.status.StartDelivery()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Complete marks the order as delivered. Terminal.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// RejectByRestaurant marks the order as declined by the restaurant. Terminal.
func (o *Order) RejectByRestaurant() error {
	newStatus, err := o.status.RejectByRestaurant()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// RejectByShipper marks the order as unassignable: the dispatch search ended
// without finding a courier. Terminal.
//
// An order with an assigned courier cannot be rejected by shipper; the
// assignment won the race and the rejection loses.
func (o *Order) RejectByShipper() error {
	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}

	newStatus, err := o.status.RejectByShipper()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// setID validates and sets the order's unique identifier.
// This is a private method used only during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setPickupLocation validates and sets the order's pickup location.
// This is a private method used only during construction.
func (o *Order) setPickupLocation(location kernel.GeoLocation) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.pickupLocation = location
	return nil
}
