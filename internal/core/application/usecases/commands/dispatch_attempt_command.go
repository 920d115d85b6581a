package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchAttemptCommandIsNotConstructed = errors.New(
	"DispatchAttemptCommand must be created via NewDispatchAttemptCommand constructor",
)

// DispatchAttemptCommand triggers a single matching attempt for one order:
// query the current courier candidates, pick the nearest one to the pickup
// point, and try to claim the order for it. One command execution maps to
// one scheduler tick.
//
// Example:
//
//	cmd, err := NewDispatchAttemptCommand(orderID, pickup)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type DispatchAttemptCommand struct {
	orderID kernel.UUID
	pickup  kernel.GeoLocation

	guard guard.ConstructorGuard
}

// NewDispatchAttemptCommand creates a matching attempt command for the given
// order and its pickup location.
func NewDispatchAttemptCommand(orderID kernel.UUID, pickup kernel.GeoLocation) (DispatchAttemptCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DispatchAttemptCommand{}, err
	}
	if err := pickup.Validate(); err != nil {
		return DispatchAttemptCommand{}, err
	}

	return DispatchAttemptCommand{
		orderID: orderID,
		pickup:  pickup,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order being dispatched.
func (c *DispatchAttemptCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Pickup returns the pickup location courier distances are measured against.
func (c *DispatchAttemptCommand) Pickup() kernel.GeoLocation {
	return c.pickup
}

// Validate ensures the command was created through the constructor.
// Returns ErrDispatchAttemptCommandIsNotConstructed if validation fails.
func (c *DispatchAttemptCommand) Validate() error {
	return c.guard.Validate(
		ErrDispatchAttemptCommandIsNotConstructed,
	)
}
