package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RouteRefreshJob keeps the route triple current while a transporter is on
// the way. The provider's throttle decides how often the routing service is
// actually called.
type RouteRefreshJob struct {
	orders    ActiveOrderReader
	locations LocationSource
	routes    RouteComputer
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewRouteRefreshJob(
	orders ActiveOrderReader,
	locations LocationSource,
	routes RouteComputer,
	logger *slog.Logger,
) *RouteRefreshJob {
	return &RouteRefreshJob{
		orders:    orders,
		locations: locations,
		routes:    routes,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "route_refresh_job"),
	}
}

// Start runs the refresh every second.
func (j *RouteRefreshJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		if err := j.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Route refresh job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Route refresh job started (running every second)")
	return nil
}

// Stop waits for a running refresh to finish.
func (j *RouteRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Route refresh job stopped")
}

// Run computes routes when the order is live, has a transporter and the
// parties have been located.
func (j *RouteRefreshJob) Run(ctx context.Context) error {
	active, err := j.orders.Active(ctx)
	if err != nil {
		return err
	}

	snapshot := j.locations.Snapshot()
	enabled := active != nil && active.IsLive() && active.Transporter() != nil && snapshot.Ready

	j.routes.Compute(ctx,
		snapshot.Buyer.Location(),
		snapshot.Seller.Location(),
		snapshot.Transport.Location(),
		enabled,
	)
	return nil
}
