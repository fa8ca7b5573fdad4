package commands

import (
	"context"
	"log/slog"

	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/ports"
)

// AssignTransporterCommandHandler assigns the transporter, opens the order
// chat and greets it with the acceptance notices.
type AssignTransporterCommandHandler struct {
	lifecycle *OrderLifecycle
	chats     ports.ChatRepository
	announcer *OrderAnnouncer
	logger    *slog.Logger
}

func NewAssignTransporterCommandHandler(
	lifecycle *OrderLifecycle,
	chats ports.ChatRepository,
	announcer *OrderAnnouncer,
	logger *slog.Logger,
) AssignTransporterCommandHandler {
	return AssignTransporterCommandHandler{
		lifecycle: lifecycle,
		chats:     chats,
		announcer: announcer,
		logger:    logger.With("component", "AssignTransporterCommandHandler"),
	}
}

func (h AssignTransporterCommandHandler) Handle(
	ctx context.Context,
	command AssignTransporterCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	assigned, err := h.lifecycle.AssignTransporter(ctx, command.Transporter())
	if err != nil {
		return nil, err
	}

	orderID := assigned.ID().String()
	if err = h.chats.Open(ctx, orderID, assigned.ChatID()); err != nil {
		h.logger.WarnContext(ctx, "failed to open chat", "order_id", orderID, "error", err)
		return assigned, nil
	}

	h.announcer.Post(ctx, orderID, "Order accepted by "+command.Transporter().Name())
	h.announcer.Post(ctx, orderID, "Live tracking started")
	return assigned, nil
}
