package tracker_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/tracking"
	"harvestlog/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWatch struct {
	ch     chan ports.PositionUpdate
	once   sync.Once
	closed chan struct{}
}

func newFakeWatch() *fakeWatch {
	return &fakeWatch{ch: make(chan ports.PositionUpdate, 4), closed: make(chan struct{})}
}

func (w *fakeWatch) Updates() <-chan ports.PositionUpdate { return w.ch }

func (w *fakeWatch) Close() { w.once.Do(func() { close(w.closed) }) }

type fakeGeolocator struct {
	position kernel.Location
	err      error
	watch    *fakeWatch
	watchErr error
}

func (g *fakeGeolocator) CurrentPosition(_ context.Context, _ ports.PositionOptions) (kernel.Location, error) {
	return g.position, g.err
}

func (g *fakeGeolocator) Watch(_ context.Context, _ ports.PositionOptions) (ports.PositionWatch, error) {
	if g.watchErr != nil {
		return nil, g.watchErr
	}
	return g.watch, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []tracking.EntityLocation
}

func (p *recordingPublisher) Publish(_ context.Context, e tracking.EntityLocation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func testConfig() tracker.Config {
	cfg := tracker.DefaultConfig()
	cfg.StepSchedule = "@every 1h"
	return cfg
}

func location(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

func newTracker(t *testing.T, geo ports.Geolocator, pub ports.LocationPublisher) *tracker.LocationTracker {
	t.Helper()
	tr, err := tracker.NewLocationTracker(testConfig(), geo, pub, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return tr
}

func TestNewLocationTracker_RejectsBadSchedule(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.StepSchedule = "every now and then"

	_, err := tracker.NewLocationTracker(cfg, &fakeGeolocator{}, nil, nil, slog.New(slog.DiscardHandler))

	require.Error(t, err)
}

func TestBootstrap_PlacesPartiesAroundDevicePosition(t *testing.T) {
	pub := &recordingPublisher{}
	geo := &fakeGeolocator{position: location(t, 12.9716, 77.5946)}
	tr := newTracker(t, geo, pub)

	require.False(t, tr.Snapshot().Ready)

	tr.Bootstrap(t.Context())

	snap := tr.Snapshot()
	assert.True(t, snap.Ready)
	assert.Empty(t, snap.Error)
	assert.InDelta(t, 12.9716, snap.Buyer.Location().Lat(), 1e-9)
	assert.InDelta(t, 12.9716+0.015, snap.Seller.Location().Lat(), 1e-9)
	assert.InDelta(t, 77.5946+0.025, snap.Seller.Location().Lng(), 1e-9)
	assert.InDelta(t, 12.9716-0.020, snap.Transport.Location().Lat(), 1e-9)
	assert.InDelta(t, 77.5946-0.015, snap.Transport.Location().Lng(), 1e-9)
	assert.Equal(t, "buyer-demo-001", snap.Buyer.ID())
	assert.Equal(t, "Priya Sharma", snap.Seller.Name())
	assert.Equal(t, kernel.RoleTransport, snap.Transport.Role())
	assert.Equal(t, 3, pub.count())
}

func TestBootstrap_FallsBackWhenUnsupported(t *testing.T) {
	geo := &fakeGeolocator{err: ports.ErrGeolocationUnsupported}
	tr := newTracker(t, geo, nil)

	tr.Bootstrap(t.Context())

	snap := tr.Snapshot()
	assert.True(t, snap.Ready)
	assert.Equal(t, "Geolocation not supported", snap.Error)
	assert.InDelta(t, 28.6139, snap.Buyer.Location().Lat(), 1e-9)
	assert.InDelta(t, 77.2090, snap.Buyer.Location().Lng(), 1e-9)
}

func TestBootstrap_RunsOnce(t *testing.T) {
	pub := &recordingPublisher{}
	geo := &fakeGeolocator{position: location(t, 10, 10)}
	tr := newTracker(t, geo, pub)

	tr.Bootstrap(t.Context())
	geo.position = location(t, 20, 20)
	tr.Bootstrap(t.Context())

	assert.InDelta(t, 10, tr.Snapshot().Buyer.Location().Lat(), 1e-9)
	assert.Equal(t, 3, pub.count())
}

func TestTick_NoopBeforeBootstrap(t *testing.T) {
	tr := newTracker(t, &fakeGeolocator{position: location(t, 10, 10)}, nil)
	before := tr.Snapshot().Transport.Location()

	tr.Tick()

	eq, err := tr.Snapshot().Transport.Location().IsEqual(before)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestTick_MovesTransporterUntilArrival(t *testing.T) {
	pub := &recordingPublisher{}
	tr := newTracker(t, &fakeGeolocator{position: location(t, 28.6139, 77.2090)}, pub)
	tr.Bootstrap(t.Context())

	start := tr.Snapshot()
	tr.Tick()
	first := tr.Snapshot().Transport.Location()

	moved := math.Hypot(
		first.Lat()-start.Transport.Location().Lat(),
		first.Lng()-start.Transport.Location().Lng(),
	)
	assert.InDelta(t, tracking.DefaultStepDegrees, moved, 1e-9)
	assert.Equal(t, 4, pub.count())

	for range 100 {
		tr.Tick()
	}

	final := tr.Snapshot()
	remaining := math.Hypot(
		final.Seller.Location().Lat()-final.Transport.Location().Lat(),
		final.Seller.Location().Lng()-final.Transport.Location().Lng(),
	)
	assert.Less(t, remaining, tracking.DefaultArrivalDegrees)

	published := pub.count()
	tr.Tick()
	assert.Equal(t, published, pub.count())
}

func TestStartTracking_AppliesWatchUpdates(t *testing.T) {
	watch := newFakeWatch()
	geo := &fakeGeolocator{position: location(t, 28.6139, 77.2090), watch: watch}
	tr := newTracker(t, geo, nil)
	tr.Bootstrap(t.Context())

	require.NoError(t, tr.StartTracking(t.Context()))
	require.NoError(t, tr.StartTracking(t.Context()))
	assert.True(t, tr.Snapshot().Tracking)

	watch.ch <- ports.PositionUpdate{Location: location(t, 28.62, 77.21)}

	require.Eventually(t, func() bool {
		return math.Abs(tr.Snapshot().Buyer.Location().Lat()-28.62) < 1e-9
	}, time.Second, 10*time.Millisecond)

	watch.ch <- ports.PositionUpdate{Err: errors.New("Position unavailable")}

	require.Eventually(t, func() bool {
		return tr.Snapshot().Error == "Position unavailable"
	}, time.Second, 10*time.Millisecond)
	assert.True(t, tr.Snapshot().Tracking)

	tr.StopTracking()
	tr.StopTracking()

	assert.False(t, tr.Snapshot().Tracking)
	select {
	case <-watch.closed:
	default:
		t.Fatal("watch was not closed")
	}
}

func TestStartTracking_ClearsPreviousError(t *testing.T) {
	geo := &fakeGeolocator{err: errors.New("User denied Geolocation"), watch: newFakeWatch()}
	tr := newTracker(t, geo, nil)
	tr.Bootstrap(t.Context())
	require.Equal(t, "User denied Geolocation", tr.Snapshot().Error)

	require.NoError(t, tr.StartTracking(t.Context()))
	defer tr.StopTracking()

	assert.Empty(t, tr.Snapshot().Error)
}

func TestStartTracking_WatchUnsupportedKeepsTracking(t *testing.T) {
	geo := &fakeGeolocator{
		err:      ports.ErrGeolocationUnsupported,
		watchErr: ports.ErrGeolocationUnsupported,
	}
	tr := newTracker(t, geo, nil)
	tr.Bootstrap(t.Context())

	require.NoError(t, tr.StartTracking(t.Context()))
	defer tr.StopTracking()

	snap := tr.Snapshot()
	assert.True(t, snap.Tracking)
	assert.Equal(t, "Geolocation not supported", snap.Error)
}

func TestStartTracking_RestartPlacesTransporterAtOffset(t *testing.T) {
	pub := &recordingPublisher{}
	geo := &fakeGeolocator{position: location(t, 12.9716, 77.5946), watch: newFakeWatch()}
	tr := newTracker(t, geo, pub)
	tr.Bootstrap(t.Context())
	origin := tr.Snapshot().Transport.Location()

	require.NoError(t, tr.StartTracking(t.Context()))
	for range 5 {
		tr.Tick()
	}
	tr.StopTracking()
	require.Greater(t, tr.Snapshot().Transport.Location().Lat(), origin.Lat())

	geo.watch = newFakeWatch()
	published := pub.count()
	require.NoError(t, tr.StartTracking(t.Context()))
	defer tr.StopTracking()

	restarted := tr.Snapshot().Transport.Location()
	assert.InDelta(t, origin.Lat(), restarted.Lat(), 1e-9)
	assert.InDelta(t, origin.Lng(), restarted.Lng(), 1e-9)
	assert.Equal(t, published+3, pub.count())
}
