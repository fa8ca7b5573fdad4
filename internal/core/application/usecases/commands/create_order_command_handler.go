package commands

import (
	"context"
	"log/slog"

	"harvestlog/internal/core/domain/model/order"
)

// CreateOrderCommandHandler places the order and starts live tracking for it.
// A tracking failure is logged; the order stands.
type CreateOrderCommandHandler struct {
	lifecycle *OrderLifecycle
	tracker   TrackingController
	logger    *slog.Logger
}

func NewCreateOrderCommandHandler(
	lifecycle *OrderLifecycle,
	tracker TrackingController,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		lifecycle: lifecycle,
		tracker:   tracker,
		logger:    logger.With("component", "CreateOrderCommandHandler"),
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, command CreateOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	created, err := h.lifecycle.Create(ctx, command.Buyer(), command.Seller(), command.Items())
	if err != nil {
		return nil, err
	}

	if err = h.tracker.StartTracking(ctx); err != nil {
		h.logger.WarnContext(ctx, "failed to start tracking", "order_id", created.ID().String(), "error", err)
	}

	return created, nil
}
