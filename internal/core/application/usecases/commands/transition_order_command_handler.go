package commands

import (
	"context"

	"harvestlog/internal/core/domain/model/order"
)

// TransitionOrderCommandHandler advances the active order, announces the new
// status in the chat and stops tracking once the order is completed.
type TransitionOrderCommandHandler struct {
	lifecycle *OrderLifecycle
	announcer *OrderAnnouncer
	tracker   TrackingController
}

func NewTransitionOrderCommandHandler(
	lifecycle *OrderLifecycle,
	announcer *OrderAnnouncer,
	tracker TrackingController,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		lifecycle: lifecycle,
		announcer: announcer,
		tracker:   tracker,
	}
}

func (h TransitionOrderCommandHandler) Handle(ctx context.Context, command TransitionOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	updated, err := h.lifecycle.Transition(ctx, command.Status())
	if err != nil {
		return nil, err
	}

	h.announcer.AnnounceStatus(ctx, updated)
	if updated.Status().IsTerminal() {
		h.tracker.StopTracking()
	}

	return updated, nil
}
