package commands

import (
	"context"

	"harvestlog/internal/core/domain/model/order"
)

// CancelOrderCommandHandler cancels the active order and stops tracking.
// The chat stays readable until the order is cleared.
type CancelOrderCommandHandler struct {
	lifecycle *OrderLifecycle
	announcer *OrderAnnouncer
	tracker   TrackingController
}

func NewCancelOrderCommandHandler(
	lifecycle *OrderLifecycle,
	announcer *OrderAnnouncer,
	tracker TrackingController,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		lifecycle: lifecycle,
		announcer: announcer,
		tracker:   tracker,
	}
}

// Handle returns the order after the call and whether it was cancelled by it.
func (h CancelOrderCommandHandler) Handle(ctx context.Context) (*order.Order, bool, error) {
	cancelled, changed, err := h.lifecycle.Cancel(ctx)
	if err != nil {
		return nil, false, err
	}

	h.tracker.StopTracking()
	if changed {
		h.announcer.AnnounceStatus(ctx, cancelled)
	}

	return cancelled, changed, nil
}
