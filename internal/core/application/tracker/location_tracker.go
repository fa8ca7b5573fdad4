// Package tracker maintains the live positions of buyer, seller and
// transporter for the session and simulates the transporter driving to the
// seller.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/tracking"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const publishTimeout = 2 * time.Second

// Snapshot is a consistent view of the tracker state.
type Snapshot struct {
	Buyer     tracking.EntityLocation
	Seller    tracking.EntityLocation
	Transport tracking.EntityLocation
	// Ready is set once bootstrap has placed all three parties.
	Ready    bool
	Tracking bool
	// Error is the last geolocation error, or "".
	Error string
}

// Entities returns the three positions in buyer, seller, transport order.
func (s Snapshot) Entities() []tracking.EntityLocation {
	return []tracking.EntityLocation{s.Buyer, s.Seller, s.Transport}
}

// LocationTracker owns the three live positions. Until Bootstrap completes the
// parties sit at the fallback coordinate and Ready is false.
type LocationTracker struct {
	cfg        Config
	geolocator ports.Geolocator
	publisher  ports.LocationPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.RWMutex
	buyer     tracking.EntityLocation
	seller    tracking.EntityLocation
	transport tracking.EntityLocation
	ready     bool
	tracking  bool
	arrived   bool
	lastErr   string

	bootstrapOnce sync.Once

	// live session resources, guarded by mu
	cron   *cron.Cron
	watch  ports.PositionWatch
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLocationTracker places every party at the fallback coordinate. publisher
// and m may be nil.
func NewLocationTracker(
	cfg Config,
	geolocator ports.Geolocator,
	publisher ports.LocationPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*LocationTracker, error) {
	if _, err := cron.ParseStandard(cfg.StepSchedule); err != nil {
		return nil, fmt.Errorf("invalid step schedule %q: %w", cfg.StepSchedule, err)
	}

	t := &LocationTracker{
		cfg:        cfg,
		geolocator: geolocator,
		publisher:  publisher,
		metrics:    m,
		logger:     logger.With("component", "LocationTracker"),
		now:        time.Now,
	}

	fallback, err := kernel.NewLocation(cfg.FallbackLat, cfg.FallbackLng)
	if err != nil {
		return nil, err
	}
	if err = t.place(fallback); err != nil {
		return nil, err
	}

	return t, nil
}

// Bootstrap resolves the buyer's device position once, waiting at most the
// configured geolocation timeout, and places seller and transporter around
// it. Any geolocation failure falls back to the fixed coordinate and is kept
// as the tracker error. Later calls return immediately.
func (t *LocationTracker) Bootstrap(ctx context.Context) {
	t.bootstrapOnce.Do(func() {
		t.bootstrap(ctx)
	})
}

func (t *LocationTracker) bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.GeolocationTimeout)
	defer cancel()

	buyerAt, err := t.geolocator.CurrentPosition(ctx, t.positionOptions())
	if err != nil {
		t.logger.WarnContext(ctx, "geolocation unavailable, using fallback", "error", err)
		buyerAt, _ = kernel.NewLocation(t.cfg.FallbackLat, t.cfg.FallbackLng)
	}

	t.mu.Lock()
	if err != nil {
		t.lastErr = geolocationMessage(err)
	}
	placeErr := t.place(buyerAt)
	if placeErr == nil {
		t.ready = true
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	if placeErr != nil {
		t.logger.ErrorContext(ctx, "failed to place parties", "error", placeErr)
		return
	}

	t.logger.InfoContext(ctx, "locations ready", "buyer", buyerAt.String())
	for _, e := range snapshot.Entities() {
		t.publish(e)
	}
}

// StartTracking subscribes to buyer position updates and schedules the
// transporter step. Calling it while tracking is a no-op. A failed
// subscription is kept as the tracker error; the transporter still moves.
// Once bootstrapped, seller and transporter are placed afresh around the
// buyer's current position, so a restarted ride begins from the offsets.
func (t *LocationTracker) StartTracking(ctx context.Context) error {
	placed, err := t.startTracking(ctx)
	if err != nil {
		return err
	}

	for _, e := range placed {
		t.publish(e)
	}
	return nil
}

func (t *LocationTracker) startTracking(ctx context.Context) ([]tracking.EntityLocation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return nil, nil
	}

	var placed []tracking.EntityLocation
	if t.ready {
		if err := t.place(t.buyer.Location()); err != nil {
			return nil, err
		}
		placed = t.snapshotLocked().Entities()
	}

	c := cron.New()
	if _, err := c.AddFunc(t.cfg.StepSchedule, func() { t.Tick() }); err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	watch, err := t.geolocator.Watch(watchCtx, t.positionOptions())
	if err != nil {
		t.lastErr = geolocationMessage(err)
		t.logger.WarnContext(ctx, "position watch unavailable", "error", err)
	} else {
		t.lastErr = ""
		t.wg.Add(1)
		go t.consume(watchCtx, watch)
	}

	c.Start()
	t.cron = c
	t.watch = watch
	t.cancel = cancel
	t.tracking = true
	t.arrived = false

	t.logger.InfoContext(ctx, "tracking started", "schedule", t.cfg.StepSchedule)
	return placed, nil
}

// StopTracking releases the position subscription and the step schedule.
// It is idempotent and waits for in-flight work to finish.
func (t *LocationTracker) StopTracking() {
	t.mu.Lock()
	if !t.tracking {
		t.mu.Unlock()
		return
	}

	t.tracking = false
	c, watch, cancel := t.cron, t.watch, t.cancel
	t.cron, t.watch, t.cancel = nil, nil, nil
	t.mu.Unlock()

	cancel()
	if watch != nil {
		watch.Close()
	}
	<-c.Stop().Done()
	t.wg.Wait()

	t.logger.Info("tracking stopped")
}

// Tick moves the transporter one step toward the seller. It does nothing
// before bootstrap or after arrival.
func (t *LocationTracker) Tick() {
	t.mu.Lock()
	if !t.ready || t.arrived {
		t.mu.Unlock()
		return
	}

	next, arrived, err := tracking.Step(
		t.transport.Location(),
		t.seller.Location(),
		t.cfg.StepDegrees,
		t.cfg.ArrivalDegrees,
	)
	if err != nil {
		t.mu.Unlock()
		t.logger.Error("transporter step failed", "error", err)
		return
	}

	if arrived {
		t.arrived = true
		t.mu.Unlock()
		t.logger.Info("transporter arrived at seller")
		return
	}

	t.transport = t.transport.MovedTo(next, t.now())
	moved := t.transport
	t.mu.Unlock()

	t.metrics.TransporterStep()
	t.publish(moved)
}

// Snapshot returns the current positions and flags.
func (t *LocationTracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *LocationTracker) snapshotLocked() Snapshot {
	return Snapshot{
		Buyer:     t.buyer,
		Seller:    t.seller,
		Transport: t.transport,
		Ready:     t.ready,
		Tracking:  t.tracking,
		Error:     t.lastErr,
	}
}

func (t *LocationTracker) consume(ctx context.Context, watch ports.PositionWatch) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-watch.Updates():
			if !ok {
				return
			}
			t.applyBuyerUpdate(update)
		}
	}
}

func (t *LocationTracker) applyBuyerUpdate(update ports.PositionUpdate) {
	t.mu.Lock()
	if update.Err != nil {
		t.lastErr = geolocationMessage(update.Err)
		t.mu.Unlock()
		t.logger.Warn("position watch error", "error", update.Err)
		return
	}
	if err := update.Location.Validate(); err != nil {
		t.mu.Unlock()
		return
	}

	t.buyer = t.buyer.MovedTo(update.Location, t.now())
	moved := t.buyer
	t.mu.Unlock()

	t.publish(moved)
}

// place puts the buyer at buyerAt and the demo parties at their offsets.
// Callers hold mu, except the constructor.
func (t *LocationTracker) place(buyerAt kernel.Location) error {
	sellerAt, err := buyerAt.Offset(t.cfg.SellerOffset.Lat, t.cfg.SellerOffset.Lng)
	if err != nil {
		return err
	}
	transportAt, err := buyerAt.Offset(t.cfg.TransportOffset.Lat, t.cfg.TransportOffset.Lng)
	if err != nil {
		return err
	}

	now := t.now()
	buyer, err := tracking.NewEntityLocation(t.cfg.Buyer.ID, kernel.RoleBuyer, t.cfg.Buyer.Name, buyerAt, true, now)
	if err != nil {
		return err
	}
	seller, err := tracking.NewEntityLocation(t.cfg.Seller.ID, kernel.RoleSeller, t.cfg.Seller.Name, sellerAt, true, now)
	if err != nil {
		return err
	}
	transport, err := tracking.NewEntityLocation(
		t.cfg.Transport.ID, kernel.RoleTransport, t.cfg.Transport.Name, transportAt, true, now)
	if err != nil {
		return err
	}

	t.buyer, t.seller, t.transport = buyer, seller, transport
	t.arrived = false
	return nil
}

func (t *LocationTracker) publish(e tracking.EntityLocation) {
	if t.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := t.publisher.Publish(ctx, e); err != nil {
		t.logger.WarnContext(ctx, "failed to publish location", "entity", e.ID(), "error", err)
	}
}

func (t *LocationTracker) positionOptions() ports.PositionOptions {
	return ports.PositionOptions{
		HighAccuracy: true,
		Timeout:      t.cfg.GeolocationTimeout,
		MaxAge:       t.cfg.GeolocationMaxAge,
	}
}

func geolocationMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrGeolocationUnsupported):
		return "Geolocation not supported"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout expired"
	default:
		return err.Error()
	}
}
