package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrStartDispatchCommandIsNotConstructed = errors.New(
	"StartDispatchCommand must be created via NewStartDispatchCommand constructor",
)

// StartDispatchCommand registers an order as waiting for a courier.
// The order id comes from the ordering system; the pickup location is where
// the courier must collect the order.
type StartDispatchCommand struct {
	orderID kernel.UUID
	pickup  kernel.GeoLocation

	guard guard.ConstructorGuard
}

// NewStartDispatchCommand creates a command to register an order for dispatch.
func NewStartDispatchCommand(orderID kernel.UUID, pickup kernel.GeoLocation) (StartDispatchCommand, error) {
	if err := orderID.Validate(); err != nil {
		return StartDispatchCommand{}, err
	}
	if err := pickup.Validate(); err != nil {
		return StartDispatchCommand{}, err
	}

	return StartDispatchCommand{
		orderID: orderID,
		pickup:  pickup,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order to dispatch.
func (c *StartDispatchCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Pickup returns the pickup location of the order.
func (c *StartDispatchCommand) Pickup() kernel.GeoLocation {
	return c.pickup
}

// Validate ensures the command was created through the constructor.
// Returns ErrStartDispatchCommandIsNotConstructed if validation fails.
func (c *StartDispatchCommand) Validate() error {
	return c.guard.Validate(
		ErrStartDispatchCommandIsNotConstructed,
	)
}
