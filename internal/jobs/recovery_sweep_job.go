package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/dispatch"

	"github.com/robfig/cron/v3"
)

// DispatchStarter starts a courier search for an order.
// Implemented by dispatch.Registry.
type DispatchStarter interface {
	StartDispatch(orderID kernel.UUID, pickup kernel.GeoLocation) error
}

// RecoverySweepJob re-enqueues orders that are waiting for a courier but have
// no running search. In-flight searches live only in process memory, so a
// restart loses them; the sweep picks those orders back up. It also acts as a
// safety net if a start request was ever dropped.
type RecoverySweepJob struct {
	activeDispatches queries.GetActiveDispatchesQueryHandler
	starter          DispatchStarter
	cron             *cron.Cron
	logger           *slog.Logger
}

// NewRecoverySweepJob creates a job that sweeps for orphaned dispatches
// every 30 seconds.
func NewRecoverySweepJob(
	activeDispatches queries.GetActiveDispatchesQueryHandler,
	starter DispatchStarter,
	logger *slog.Logger,
) *RecoverySweepJob {
	return &RecoverySweepJob{
		activeDispatches: activeDispatches,
		starter:          starter,
		cron:             cron.New(cron.WithSeconds()),
		logger:           logger.With("component", "recovery_sweep_job"),
	}
}

// Start begins the sweep schedule.
func (j *RecoverySweepJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		j.sweep(ctx)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Recovery sweep job started (running every 30 seconds)")
	return nil
}

// Stop stops the sweep schedule.
func (j *RecoverySweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Recovery sweep job stopped")
}

func (j *RecoverySweepJob) sweep(ctx context.Context) {
	waiting, err := j.activeDispatches.Handle(ctx, queries.NewGetActiveDispatchesQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Recovery sweep failed to list waiting orders", "error", err)
		return
	}

	for _, dispatchInfo := range waiting {
		err = j.starter.StartDispatch(dispatchInfo.ID, dispatchInfo.Pickup)
		if errors.Is(err, dispatch.ErrDispatchAlreadyRunning) {
			continue
		}
		if err != nil {
			j.logger.ErrorContext(ctx, "Recovery sweep failed to restart dispatch",
				"order_id", dispatchInfo.ID.String(), "error", err)
			continue
		}

		j.logger.InfoContext(ctx, "Recovery sweep restarted dispatch",
			"order_id", dispatchInfo.ID.String())
	}
}
