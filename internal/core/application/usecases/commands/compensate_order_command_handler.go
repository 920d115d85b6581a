package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// CompensateOrderCommandHandler settles an order that will not be delivered.
// Three sub-actions make up the compensation: record the terminal rejection
// status, refund the payment, and notify the customer. The status write is
// conditional so compensation cannot clobber a successful assignment that
// raced it; refund and notification run only after the status write took
// effect, and each is best-effort: a failure is logged and does not block
// the other.
type CompensateOrderCommandHandler struct {
	uowFactory    OrderUoWFactory
	payments      ports.PaymentClient
	notifications ports.NotificationClient
	logger        *slog.Logger
}

// NewCompensateOrderCommandHandler creates a handler for order compensation.
func NewCompensateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentClient,
	notifications ports.NotificationClient,
	logger *slog.Logger,
) CompensateOrderCommandHandler {
	return CompensateOrderCommandHandler{
		uowFactory:    uowFactory,
		payments:      payments,
		notifications: notifications,
		logger:        logger.With("component", "compensate_order"),
	}
}

// Handle processes the compensation command.
//
// The terminal status lands through the same conditional write discipline
// as courier assignment: only an order with no courier and a non-terminal
// status is touched. When the write reports no effect the order was already
// settled by someone else (assigned, or compensated earlier) and the
// handler returns without refunding or notifying. When the write takes
// effect the refund and the customer notification each run exactly once.
func (h CompensateOrderCommandHandler) Handle(ctx context.Context, command CompensateOrderCommand) error {
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

	rejected, err := uow.OrderRepository().TryReject(ctx, command.OrderID(), command.Status())
	if err != nil {
		return err
	}

	if !rejected {
		h.logger.InfoContext(ctx, "order already settled, skipping compensation",
			"order_id", command.OrderID().String())
		return nil
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.payments.Refund(ctx, command.OrderID()); err != nil {
		h.logger.ErrorContext(ctx, "refund failed",
			"order_id", command.OrderID().String(), "error", err)
	}

	if err = h.notifications.NotifyOrderRejected(ctx, command.OrderID(), command.Status()); err != nil {
		h.logger.ErrorContext(ctx, "customer notification failed",
			"order_id", command.OrderID().String(), "error", err)
	}

	return nil
}
