package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

const (
	// AcceptDelay is how long a new order waits before the demo transporter accepts it.
	AcceptDelay = 2 * time.Second
	// PickupDelay is how long after acceptance the demo transporter picks the order up.
	PickupDelay = 3 * time.Second
)

// DemoDispatchJob plays the transporter for a single-user demo session: it
// accepts new orders and later picks them up from the seller.
type DemoDispatchJob struct {
	orders     ActiveOrderReader
	locations  LocationSource
	assign     commands.AssignTransporterCommandHandler
	transition commands.TransitionOrderCommandHandler
	announcer  Announcer
	now        func() time.Time
	cron       *cron.Cron
	logger     *slog.Logger
}

func NewDemoDispatchJob(
	orders ActiveOrderReader,
	locations LocationSource,
	assign commands.AssignTransporterCommandHandler,
	transition commands.TransitionOrderCommandHandler,
	announcer Announcer,
	now func() time.Time,
	logger *slog.Logger,
) *DemoDispatchJob {
	if now == nil {
		now = time.Now
	}
	return &DemoDispatchJob{
		orders:     orders,
		locations:  locations,
		assign:     assign,
		transition: transition,
		announcer:  announcer,
		now:        now,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "demo_dispatch_job"),
	}
}

// Start runs the dispatcher every second.
func (j *DemoDispatchJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		if err := j.Run(ctx); err != nil && !isExpected(err) {
			j.logger.ErrorContext(ctx, "Demo dispatch job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Demo dispatch job started (running every second)")
	return nil
}

// Stop waits for a running pass to finish.
func (j *DemoDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Demo dispatch job stopped")
}

// Run advances the active order by at most one step.
func (j *DemoDispatchJob) Run(ctx context.Context) error {
	active, err := j.orders.Active(ctx)
	if err != nil || active == nil {
		return err
	}

	switch active.Status() {
	case order.Created:
		if j.now().Sub(active.CreatedAt()) < AcceptDelay {
			return nil
		}
		return j.accept(ctx)

	case order.TransportAssigned:
		if j.now().Sub(active.UpdatedAt()) < PickupDelay {
			return nil
		}
		return j.pickUp(ctx)

	default:
		return nil
	}
}

func (j *DemoDispatchJob) accept(ctx context.Context) error {
	transport := j.locations.Snapshot().Transport
	party, err := order.NewParty(
		transport.ID(), transport.Role(), transport.Name(),
		transport.Location(), transport.Online(), transport.LastUpdated(),
	)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignTransporterCommand(party)
	if err != nil {
		return err
	}

	assigned, err := j.assign.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	j.logger.InfoContext(ctx, "Demo transporter accepted order", "order_id", assigned.ID().String())
	return nil
}

func (j *DemoDispatchJob) pickUp(ctx context.Context) error {
	cmd, err := commands.NewTransitionOrderCommand(order.PickedUp)
	if err != nil {
		return err
	}

	updated, err := j.transition.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	j.announcer.Post(ctx, updated.ID().String(), "Order picked up from seller")
	return nil
}

// isExpected reports races with the user acting on the same order.
func isExpected(err error) bool {
	return errors.Is(err, commands.ErrOrderUpdateInProgress) ||
		errors.Is(err, commands.ErrNoActiveOrder) ||
		errors.Is(err, order.ErrIllegalTransition) ||
		errors.Is(err, order.ErrTransporterAlreadyAssigned) ||
		errors.Is(err, order.ErrOrderNotAssignable)
}
