// Usage:
//
//	t, err := tracker.NewLocationTracker(tracker.DefaultConfig(), geolocator, publisher, m, logger)
//	go t.Bootstrap(ctx)
//	_ = t.StartTracking(ctx)
//	defer t.StopTracking()
//
//	snap := t.Snapshot()
package tracker
