package commands

import (
	"context"
	"time"

	"dispatch/internal/core/ports"
)

// ReportCourierLocationCommandHandler accepts courier location pings.
// The courier must be known before the ping is stored; the ping itself
// lands in the location store, where it expires on its own once the
// freshness window passes.
type ReportCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	locations  ports.CourierLocationStore
}

// NewReportCourierLocationCommandHandler creates a handler for location pings.
func NewReportCourierLocationCommandHandler(
	uowFactory CourierUoWFactory,
	locations ports.CourierLocationStore,
) ReportCourierLocationCommandHandler {
	return ReportCourierLocationCommandHandler{
		uowFactory: uowFactory,
		locations:  locations,
	}
}

// Handle processes a location ping.
// Verifies the courier exists, then stores the ping stamped with the
// current time. A ping from an unknown courier fails with the repository's
// not-found error.
func (h ReportCourierLocationCommandHandler) Handle(ctx context.Context, command ReportCourierLocationCommand) error {
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

	if _, err := uow.CourierRepository().Get(ctx, command.CourierID()); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	return h.locations.Put(ctx, command.CourierID(), ports.LocationPing{
		Location:   command.Location(),
		ReportedAt: time.Now(),
	})
}
