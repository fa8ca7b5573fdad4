package routes_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"harvestlog/internal/core/application/routes"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRouteClient struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockRouteClient) FetchRoute(ctx context.Context, from, to kernel.Location) (*routing.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, from, to)
	r, _ := args.Get(0).(*routing.Route)
	return r, args.Error(1)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func loc(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

func route(t *testing.T, from, to kernel.Location, meters, seconds float64) *routing.Route {
	t.Helper()
	r, err := routing.NewRoute([]kernel.Location{from, to}, meters, seconds)
	require.NoError(t, err)
	return r
}

type fixture struct {
	buyer, seller, transport kernel.Location
	client                   *MockRouteClient
	clock                    *fakeClock
	metrics                  *metrics.Metrics
	provider                 *routes.RouteProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		buyer:     loc(t, 28.6139, 77.2090),
		seller:    loc(t, 28.6289, 77.2340),
		transport: loc(t, 28.5939, 77.1940),
		client:    &MockRouteClient{},
		clock:     &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.provider = routes.NewRouteProvider(f.client, 0, f.metrics, slog.New(slog.DiscardHandler), f.clock.Now)
	return f
}

func TestCompute_FetchesAllLegs(t *testing.T) {
	f := newFixture(t)
	bs := route(t, f.buyer, f.seller, 3456, 420)
	st := route(t, f.seller, f.transport, 5100, 600)
	bt := route(t, f.buyer, f.transport, 2049, 275)
	f.client.On("FetchRoute", mock.Anything, f.buyer, f.seller).Return(bs, nil).Once()
	f.client.On("FetchRoute", mock.Anything, f.seller, f.transport).Return(st, nil).Once()
	f.client.On("FetchRoute", mock.Anything, f.buyer, f.transport).Return(bt, nil).Once()

	got := f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)

	assert.Same(t, bs, got.BuyerToSeller)
	assert.Same(t, st, got.SellerToTransport)
	assert.Same(t, bt, got.BuyerToTransport)
	assert.InDelta(t, 3.5, got.BuyerToSeller.DistanceKm(), 1e-9)
	assert.InDelta(t, 7, got.BuyerToSeller.DurationMinutes(), 1e-9)
	assert.False(t, f.provider.Loading())
	assert.InDelta(t, 3, testutil.ToFloat64(f.metrics.RouteFetches.WithLabelValues("ok")), 1e-9)
	f.client.AssertExpectations(t)
}

func TestCompute_FailedLegIsNil(t *testing.T) {
	f := newFixture(t)
	bs := route(t, f.buyer, f.seller, 1000, 60)
	f.client.On("FetchRoute", mock.Anything, f.buyer, f.seller).Return(bs, nil)
	f.client.On("FetchRoute", mock.Anything, f.seller, f.transport).Return(nil, errors.New("connection refused"))
	f.client.On("FetchRoute", mock.Anything, f.buyer, f.transport).Return(nil, nil)

	got := f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)

	assert.NotNil(t, got.BuyerToSeller)
	assert.Nil(t, got.SellerToTransport)
	assert.Nil(t, got.BuyerToTransport)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RouteFetches.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RouteFetches.WithLabelValues("no_route")), 1e-9)
}

func TestCompute_Throttled(t *testing.T) {
	f := newFixture(t)
	bs := route(t, f.buyer, f.seller, 1000, 60)
	f.client.On("FetchRoute", mock.Anything, mock.Anything, mock.Anything).Return(bs, nil)

	first := f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)
	f.client.AssertNumberOfCalls(t, "FetchRoute", 3)

	f.clock.now = f.clock.now.Add(9 * time.Second)
	second := f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)
	f.client.AssertNumberOfCalls(t, "FetchRoute", 3)
	assert.Equal(t, first, second)

	f.clock.now = f.clock.now.Add(time.Second)
	f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)
	f.client.AssertNumberOfCalls(t, "FetchRoute", 6)
}

func TestCompute_DisabledReturnsPrevious(t *testing.T) {
	f := newFixture(t)

	got := f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, false)

	assert.Nil(t, got.BuyerToSeller)
	assert.Nil(t, got.SellerToTransport)
	assert.Nil(t, got.BuyerToTransport)
	f.client.AssertNotCalled(t, "FetchRoute", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompute_CancelledContextKeepsPreviousAndRetries(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	got := f.provider.Compute(ctx, f.buyer, f.seller, f.transport, true)

	assert.Nil(t, got.BuyerToSeller)
	assert.False(t, f.provider.Loading())
	f.client.AssertNotCalled(t, "FetchRoute", mock.Anything, mock.Anything, mock.Anything)

	bs := route(t, f.buyer, f.seller, 1000, 60)
	f.client.On("FetchRoute", mock.Anything, mock.Anything, mock.Anything).Return(bs, nil)

	got = f.provider.Compute(t.Context(), f.buyer, f.seller, f.transport, true)

	assert.NotNil(t, got.BuyerToSeller)
	f.client.AssertNumberOfCalls(t, "FetchRoute", 3)
}
