package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCompensateOrderCommandIsNotConstructed = errors.New(
	"CompensateOrderCommand must be created via NewCompensateOrderCommand constructor",
)

// CompensateOrderCommand closes an order that will not be delivered: the
// dispatch timed out, was cancelled, or the restaurant rejected the order.
// Carries the terminal rejection status to record on the order.
//
// Example:
//
//	cmd, err := NewCompensateOrderCommand(orderID, order.RejectedByShipper)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type CompensateOrderCommand struct {
	orderID kernel.UUID
	status  order.Status

	guard guard.ConstructorGuard
}

// NewCompensateOrderCommand creates a compensation command for the given
// order. status must be one of the rejection statuses; Delivered is a
// successful terminal status and never a compensation target.
func NewCompensateOrderCommand(orderID kernel.UUID, status order.Status) (CompensateOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CompensateOrderCommand{}, err
	}

	if status != order.RejectedByRestaurant && status != order.RejectedByShipper {
		return CompensateOrderCommand{}, errs.NewValueIsInvalidError("status")
	}

	return CompensateOrderCommand{
		orderID: orderID,
		status:  status,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order being compensated.
func (c *CompensateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the terminal rejection status to record on the order.
func (c *CompensateOrderCommand) Status() order.Status {
	return c.status
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompensateOrderCommandIsNotConstructed if validation fails.
func (c *CompensateOrderCommand) Validate() error {
	return c.guard.Validate(
		ErrCompensateOrderCommandIsNotConstructed,
	)
}
