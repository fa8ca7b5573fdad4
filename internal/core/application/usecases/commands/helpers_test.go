package commands_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"harvestlog/internal/adapters/out/memory/chatstore"
	"harvestlog/internal/adapters/out/memory/orderstore"
	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type MockTracker struct{ mock.Mock }

func (m *MockTracker) StartTracking(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTracker) StopTracking() {
	m.Called()
}

type MockJournal struct{ mock.Mock }

func (m *MockJournal) Record(ctx context.Context, o *order.Order, from order.Status) error {
	args := m.Called(ctx, o, from)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func party(t *testing.T, id string, role kernel.Role, name string) order.Party {
	t.Helper()
	l, err := kernel.NewLocation(28.6139, 77.2090)
	require.NoError(t, err)
	p, err := order.NewParty(id, role, name, l, true, baseTime)
	require.NoError(t, err)
	return p
}

func items(t *testing.T) []order.Item {
	t.Helper()
	tomatoes, err := order.NewItem("Tomatoes", 20, 45)
	require.NoError(t, err)
	chilies, err := order.NewItem("Chilies", 5, 80)
	require.NoError(t, err)
	return []order.Item{tomatoes, chilies}
}

type fixture struct {
	clock     *fakeClock
	orders    *orderstore.Store
	chats     *chatstore.Store
	lifecycle *commands.OrderLifecycle
	announcer *commands.OrderAnnouncer
	tracker   *MockTracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: baseTime}
	orders := orderstore.New(1)
	chats := chatstore.New(0)
	tracker := new(MockTracker)

	return &fixture{
		clock:     clock,
		orders:    orders,
		chats:     chats,
		lifecycle: commands.NewOrderLifecycle(orders, nil, nil, discardLogger(), clock.Now),
		announcer: commands.NewOrderAnnouncer(chats, nil, discardLogger(), clock.Now),
		tracker:   tracker,
	}
}

func (f *fixture) create(t *testing.T) *order.Order {
	t.Helper()
	o, err := f.lifecycle.Create(t.Context(),
		party(t, "buyer-1", kernel.RoleBuyer, "Asha"),
		party(t, "seller-1", kernel.RoleSeller, "Ravi Farms"),
		items(t))
	require.NoError(t, err)
	return o
}

func (f *fixture) assign(t *testing.T) *order.Order {
	t.Helper()
	cmd, err := commands.NewAssignTransporterCommand(party(t, "transport-1", kernel.RoleTransport, "Kiran"))
	require.NoError(t, err)
	h := commands.NewAssignTransporterCommandHandler(f.lifecycle, f.chats, f.announcer, discardLogger())
	o, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return o
}
