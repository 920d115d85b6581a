package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrOrderAlreadySettled is returned when a dispatch is requested for an
// order that already has a courier or already reached a terminal status.
var ErrOrderAlreadySettled = errors.New("order already settled")

// StartDispatchCommandHandler persists the order as ready for pickup with no
// courier, the state the matching attempts and the recovery sweep key off.
// Registering the same order twice is a no-op, so a retried start request
// cannot duplicate anything.
type StartDispatchCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewStartDispatchCommandHandler creates a handler for dispatch registration.
func NewStartDispatchCommandHandler(uowFactory OrderUoWFactory) StartDispatchCommandHandler {
	return StartDispatchCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the registration command.
// A new order is stored ready for pickup. An order already waiting for a
// courier is left as is. An order with a courier or in a terminal status
// fails with ErrOrderAlreadySettled.
func (h StartDispatchCommandHandler) Handle(ctx context.Context, command StartDispatchCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	existing, err := ordersRepo.Get(ctx, command.OrderID())
	switch {
	case err == nil:
		if existing.Courier() != nil || existing.Status().IsTerminal() {
			return ErrOrderAlreadySettled
		}
		return nil
	case errors.Is(err, errs.ErrObjectNotFound):
		// New order, fall through to insert.
	default:
		return err
	}

	aggregate, err := order.RestoreOrder(command.OrderID(), command.Pickup(), order.ReadyForPickup, nil)
	if err != nil {
		return err
	}

	if err = ordersRepo.Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
