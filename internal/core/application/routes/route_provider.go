// Package routes computes the three driving routes shown on the live map:
// buyer to seller, seller to transporter and buyer to transporter.
package routes

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultThrottle is the minimum spacing between two fetch rounds.
const DefaultThrottle = 10 * time.Second

// RouteProvider fetches routes at most once per throttle window and keeps the
// last result. A leg that fails is reported as nil.
type RouteProvider struct {
	client   ports.RouteClient
	throttle time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastFetch time.Time
	routes    routing.Routes
	loading   bool
}

// NewRouteProvider builds a provider. A zero throttle selects DefaultThrottle;
// now may be nil for the wall clock.
func NewRouteProvider(
	client ports.RouteClient,
	throttle time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
	now func() time.Time,
) *RouteProvider {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	if now == nil {
		now = time.Now
	}
	return &RouteProvider{
		client:   client,
		throttle: throttle,
		metrics:  m,
		logger:   logger.With("component", "RouteProvider"),
		now:      now,
	}
}

// Compute refreshes the routes when enabled and the throttle window has
// passed, and returns the current set. When disabled or throttled it returns
// the previous result without calling the route service. A batch cut short
// by ctx keeps the previous result and leaves the next call unthrottled.
func (p *RouteProvider) Compute(ctx context.Context, buyer, seller, transport kernel.Location, enabled bool) routing.Routes {
	p.mu.Lock()
	if !enabled || p.loading || (!p.lastFetch.IsZero() && p.now().Sub(p.lastFetch) < p.throttle) {
		routes := p.routes
		p.mu.Unlock()
		return routes
	}
	p.lastFetch = p.now()
	p.loading = true
	p.mu.Unlock()

	var next routing.Routes
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.fetchLeg(gctx, "buyer_to_seller", buyer, seller, &next.BuyerToSeller)
	})
	g.Go(func() error {
		return p.fetchLeg(gctx, "seller_to_transport", seller, transport, &next.SellerToTransport)
	})
	g.Go(func() error {
		return p.fetchLeg(gctx, "buyer_to_transport", buyer, transport, &next.BuyerToTransport)
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		// An abandoned batch does not count against the throttle window.
		p.lastFetch = time.Time{}
		p.logger.DebugContext(ctx, "route batch abandoned", "error", err)
		return p.routes
	}
	p.routes = next
	return next
}

// Routes returns the last computed set.
func (p *RouteProvider) Routes() routing.Routes {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routes
}

// Loading reports whether a fetch round is in flight.
func (p *RouteProvider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// fetchLeg stores the leg result in dst. It only fails when ctx ends, which
// abandons the whole batch.
func (p *RouteProvider) fetchLeg(ctx context.Context, leg string, from, to kernel.Location, dst **routing.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	*dst = p.fetch(ctx, leg, from, to)
	return ctx.Err()
}

func (p *RouteProvider) fetch(ctx context.Context, leg string, from, to kernel.Location) *routing.Route {
	started := time.Now()
	route, err := p.client.FetchRoute(ctx, from, to)
	elapsed := time.Since(started).Seconds()

	switch {
	case err != nil:
		p.metrics.RouteFetch("error", elapsed)
		p.logger.WarnContext(ctx, "route fetch failed", "leg", leg, "error", err)
		return nil
	case route == nil:
		p.metrics.RouteFetch("no_route", elapsed)
		return nil
	default:
		p.metrics.RouteFetch("ok", elapsed)
		return route
	}
}
