package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/queries"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	recoverySweepJob *RecoverySweepJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	activeDispatches queries.GetActiveDispatchesQueryHandler,
	starter DispatchStarter,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		recoverySweepJob: NewRecoverySweepJob(activeDispatches, starter, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.recoverySweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start recovery sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.recoverySweepJob.Stop()
}
