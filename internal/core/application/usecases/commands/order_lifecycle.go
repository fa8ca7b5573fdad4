// Package commands contains the operations that change session state: the
// order lifecycle, transporter assignment, status transitions, teardown and
// chat messages. Each command is validated by its constructor and executed by
// a handler.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/metrics"
)

var (
	ErrOrderAlreadyActive    = errors.New("an order is already active")
	ErrNoActiveOrder         = errors.New("no active order")
	ErrOrderUpdateInProgress = errors.New("order update in progress")
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// OrderLifecycle owns the single active order of a session and is the only
// writer of it. Assignment and transitions are guarded by an in-flight flag:
// a second attempt while one is running fails with ErrOrderUpdateInProgress
// instead of waiting. Every failure is also kept as LastError until the next
// success or Clear.
type OrderLifecycle struct {
	orders  ports.OrderRepository
	journal ports.OrderJournal
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     Clock

	inFlight atomic.Bool
	// mu serializes store writes so Cancel cannot interleave with a guarded update.
	mu sync.Mutex

	errMu   sync.RWMutex
	lastErr string
}

// NewOrderLifecycle builds the lifecycle. journal and m may be nil.
func NewOrderLifecycle(
	orders ports.OrderRepository,
	journal ports.OrderJournal,
	m *metrics.Metrics,
	logger *slog.Logger,
	now Clock,
) *OrderLifecycle {
	if now == nil {
		now = time.Now
	}

	return &OrderLifecycle{
		orders:  orders,
		journal: journal,
		metrics: m,
		logger:  logger.With("component", "OrderLifecycle"),
		now:     now,
	}
}

// Create places a new order. It fails with ErrOrderAlreadyActive while the
// session still holds an order, whatever its status.
func (l *OrderLifecycle) Create(
	ctx context.Context,
	buyer, seller order.Party,
	items []order.Item,
) (*order.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.orders.GetActive(ctx)
	if err != nil {
		return nil, l.fail("create", err)
	}
	if active != nil {
		return nil, l.fail("create", ErrOrderAlreadyActive)
	}

	created, err := order.NewOrder(kernel.NewOrderedUUID(), buyer, seller, items, l.now())
	if err != nil {
		return nil, l.fail("create", err)
	}

	if err = l.orders.Add(ctx, created); err != nil {
		if errors.Is(err, errs.ErrObjectAlreadyExists) {
			err = ErrOrderAlreadyActive
		}
		return nil, l.fail("create", err)
	}

	l.succeed(ctx, created, order.Unknown)
	l.metrics.SetActiveOrders(1)
	return created.Clone(), nil
}

// AssignTransporter attaches the transporter to the active order.
func (l *OrderLifecycle) AssignTransporter(ctx context.Context, transporter order.Party) (*order.Order, error) {
	return l.guarded(ctx, "assign", func(o *order.Order) error {
		return o.AssignTransporter(transporter, l.now())
	})
}

// Transition moves the active order to next if the transition table allows it.
func (l *OrderLifecycle) Transition(ctx context.Context, next order.Status) (*order.Order, error) {
	return l.guarded(ctx, "transition", func(o *order.Order) error {
		return o.TransitionTo(next, l.now())
	})
}

// Cancel forces the active order into Cancelled. It reports false, and changes
// nothing, when there is no order or the order is already terminal.
func (l *OrderLifecycle) Cancel(ctx context.Context) (*order.Order, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.orders.GetActive(ctx)
	if err != nil {
		return nil, false, l.fail("cancel", err)
	}
	if active == nil {
		return nil, false, nil
	}

	from := active.Status()
	if !active.Cancel(l.now()) {
		return active, false, nil
	}

	if err = l.orders.Update(ctx, active); err != nil {
		return nil, false, l.fail("cancel", err)
	}

	l.succeed(ctx, active, from)
	return active.Clone(), true, nil
}

// Clear drops the active order and resets the last error.
func (l *OrderLifecycle) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.orders.GetActive(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		if err = l.orders.Remove(ctx, active.ID()); err != nil {
			return err
		}
	}

	l.setLastError("")
	l.metrics.SetActiveOrders(0)
	return nil
}

// Active returns a copy of the active order, or nil.
func (l *OrderLifecycle) Active(ctx context.Context) (*order.Order, error) {
	return l.orders.GetActive(ctx)
}

// LastError is the message of the most recent failed operation, or "".
func (l *OrderLifecycle) LastError() string {
	l.errMu.RLock()
	defer l.errMu.RUnlock()
	return l.lastErr
}

func (l *OrderLifecycle) guarded(
	ctx context.Context,
	operation string,
	mutate func(*order.Order) error,
) (*order.Order, error) {
	if !l.inFlight.CompareAndSwap(false, true) {
		return nil, l.fail(operation, ErrOrderUpdateInProgress)
	}
	defer l.inFlight.Store(false)

	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.orders.GetActive(ctx)
	if err != nil {
		return nil, l.fail(operation, err)
	}
	if active == nil {
		return nil, l.fail(operation, ErrNoActiveOrder)
	}

	from := active.Status()
	if err = mutate(active); err != nil {
		return nil, l.fail(operation, err)
	}

	if err = l.orders.Update(ctx, active); err != nil {
		return nil, l.fail(operation, err)
	}

	l.succeed(ctx, active, from)
	return active.Clone(), nil
}

func (l *OrderLifecycle) succeed(ctx context.Context, o *order.Order, from order.Status) {
	l.setLastError("")
	l.metrics.Transition(o.Status().String())

	l.logger.InfoContext(ctx, "order updated",
		"order_id", o.ID().String(),
		"from", from.String(),
		"to", o.Status().String(),
	)

	if l.journal == nil {
		return
	}
	if err := l.journal.Record(ctx, o, from); err != nil {
		l.logger.WarnContext(ctx, "failed to journal order change", "order_id", o.ID().String(), "error", err)
	}
}

func (l *OrderLifecycle) fail(operation string, err error) error {
	l.setLastError(err.Error())
	l.metrics.Rejected(operation, rejectionReason(err))
	return err
}

func (l *OrderLifecycle) setLastError(msg string) {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	l.lastErr = msg
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrOrderAlreadyActive):
		return "already_active"
	case errors.Is(err, ErrNoActiveOrder):
		return "no_active_order"
	case errors.Is(err, ErrOrderUpdateInProgress):
		return "in_progress"
	case errors.Is(err, order.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, order.ErrTransporterAlreadyAssigned):
		return "already_assigned"
	case errors.Is(err, order.ErrOrderNotAssignable):
		return "not_assignable"
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, order.ErrItemsAreRequired):
		return "invalid"
	default:
		return "internal"
	}
}
