package cmd

import (
	"context"
	"log/slog"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/redislocations"
	"dispatch/internal/adapters/out/webhooks"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/dispatch"
	"dispatch/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use case handlers and owns the
// long-lived pieces of the service: the unit of work factory, the location
// store, the outbound webhook clients and the dispatch scheduler.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	locations  *redislocations.Store
	uowFactory *postgres.GormUnitOfWorkFactory
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, redisClient *redis.Client, logger *slog.Logger) CompositionRoot {
	locations := redislocations.NewStore(redisClient, config.CourierFreshnessWindow)

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		logger:     logger,
		locations:  locations,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, locations),
	}
}

func (c *CompositionRoot) CreateStartDispatchCommandHandler() commands.StartDispatchCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartDispatchCommandHandler(f)
}

func (c *CompositionRoot) CreateRegisterCourierCommandHandler() commands.RegisterCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateReportCourierLocationCommandHandler() commands.ReportCourierLocationCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportCourierLocationCommandHandler(f, c.locations)
}

func (c *CompositionRoot) CreateDispatchAttemptCommandHandler() commands.DispatchAttemptCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchAttemptCommandHandler(f, c.config.CourierFreshnessWindow)
}

func (c *CompositionRoot) CreateCompensateOrderCommandHandler() commands.CompensateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompensateOrderCommandHandler(
		f,
		webhooks.NewHTTPPaymentClient(c.config.PaymentServiceURL),
		webhooks.NewHTTPNotificationClient(c.config.NotificationServiceURL),
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetActiveDispatchesQueryHandler() queries.GetActiveDispatchesQueryHandler {
	return queries.NewGetActiveDispatchesQueryHandler(c.gormDB)
}

// CreateDispatchRegistry builds the per-order scheduler. Each attempt runs
// the matching use case; terminal events map to the compensation flow.
func (c *CompositionRoot) CreateDispatchRegistry() *dispatch.Registry {
	attemptHandler := c.CreateDispatchAttemptCommandHandler()

	attempter := dispatch.AttempterFunc(func(
		ctx context.Context,
		orderID kernel.UUID,
		pickup kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		command, err := commands.NewDispatchAttemptCommand(orderID, pickup)
		if err != nil {
			return commands.AttemptResult{}, err
		}
		return attemptHandler.Handle(ctx, command)
	})

	outcomes := &dispatchOutcomes{
		compensateHandler: c.CreateCompensateOrderCommandHandler(),
		logger:            c.logger.With("component", "dispatch_outcomes"),
	}

	return dispatch.NewRegistry(
		attempter,
		outcomes,
		c.config.TickInterval,
		c.config.DispatchDeadline,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager(registry *dispatch.Registry) *jobs.JobManager {
	return jobs.NewJobManager(c.CreateGetActiveDispatchesQueryHandler(), registry, c.logger)
}

// dispatchOutcomes maps terminal dispatch events to business actions.
// A timed out search rejects the order on the courier side; an explicit
// cancellation rejects it on the restaurant side. Both run the same
// refund and notification flow.
type dispatchOutcomes struct {
	compensateHandler commands.CompensateOrderCommandHandler
	logger            *slog.Logger
}

func (o *dispatchOutcomes) OnAssigned(ctx context.Context, orderID kernel.UUID, courierID kernel.UUID) {
	o.logger.InfoContext(ctx, "order assigned",
		"order_id", orderID.String(),
		"courier_id", courierID.String())
}

func (o *dispatchOutcomes) OnTimedOut(ctx context.Context, orderID kernel.UUID) {
	o.compensate(ctx, orderID, order.RejectedByShipper)
}

func (o *dispatchOutcomes) OnCancelled(ctx context.Context, orderID kernel.UUID) {
	o.compensate(ctx, orderID, order.RejectedByRestaurant)
}

func (o *dispatchOutcomes) compensate(ctx context.Context, orderID kernel.UUID, status order.Status) {
	command, err := commands.NewCompensateOrderCommand(orderID, status)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to build compensation command",
			"order_id", orderID.String(), "error", err)
		return
	}

	if err = o.compensateHandler.Handle(ctx, command); err != nil {
		o.logger.ErrorContext(ctx, "compensation failed",
			"order_id", orderID.String(),
			"status", status.String(),
			"error", err)
	}
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
