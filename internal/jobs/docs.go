// Package jobs provides scheduled background tasks for the live tracking session.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. DemoDispatchJob - Runs every second; accepts a new order after AcceptDelay and
// picks it up from the seller PickupDelay later, posting chat notices
// 2. RouteRefreshJob - Runs every second; recomputes the driving routes while the order is live
//
// # Usage
//
//	jobManager := jobs.NewJobManager(dispatchJob, routeJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
//   - DemoDispatchJob ignores races with the user acting on the same order
//   - RouteRefreshJob logs store failures; routing failures are handled by the provider
//   - Failed job starts stop any already running jobs
package jobs
