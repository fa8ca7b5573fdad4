package commands

import (
	"context"
	"log/slog"

	"harvestlog/internal/core/ports"
)

// ClearOrderCommandHandler tears the session down: it cancels the active
// order, stops tracking, closes the chat and drops the order.
type ClearOrderCommandHandler struct {
	lifecycle *OrderLifecycle
	chats     ports.ChatRepository
	tracker   TrackingController
	logger    *slog.Logger
}

func NewClearOrderCommandHandler(
	lifecycle *OrderLifecycle,
	chats ports.ChatRepository,
	tracker TrackingController,
	logger *slog.Logger,
) ClearOrderCommandHandler {
	return ClearOrderCommandHandler{
		lifecycle: lifecycle,
		chats:     chats,
		tracker:   tracker,
		logger:    logger.With("component", "ClearOrderCommandHandler"),
	}
}

func (h ClearOrderCommandHandler) Handle(ctx context.Context) error {
	active, _, err := h.lifecycle.Cancel(ctx)
	if err != nil {
		return err
	}

	h.tracker.StopTracking()

	if active != nil {
		if err = h.chats.Close(ctx, active.ID().String()); err != nil {
			h.logger.WarnContext(ctx, "failed to close chat", "order_id", active.ID().String(), "error", err)
		}
	}

	return h.lifecycle.Clear(ctx)
}
