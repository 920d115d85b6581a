// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the dispatch service.
//
// # Available Jobs
//
// 1. RecoverySweepJob - Runs every 30 seconds to restart courier searches for
// orders that are waiting for a courier but have no running search, typically
// after a process restart.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(activeDispatchesHandler, registry, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The sweep ignores searches that are already running and logs everything
// else; a failed sweep run is retried on the next schedule.
package jobs
