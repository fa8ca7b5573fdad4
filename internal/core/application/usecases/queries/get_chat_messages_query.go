package queries

import (
	"context"
	"errors"

	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/errs"
)

// GetChatMessagesQueryHandler returns the chat log of the active order.
// Without an active order or an open chat the log is empty.
type GetChatMessagesQueryHandler struct {
	orders ActiveOrderSource
	chats  ports.ChatRepository
}

func NewGetChatMessagesQueryHandler(orders ActiveOrderSource, chats ports.ChatRepository) GetChatMessagesQueryHandler {
	return GetChatMessagesQueryHandler{orders: orders, chats: chats}
}

func (h GetChatMessagesQueryHandler) Handle(ctx context.Context) ([]chat.Message, error) {
	active, err := h.orders.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return []chat.Message{}, nil
	}

	messages, err := h.chats.Messages(ctx, active.ID().String())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return []chat.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	return messages, nil
}
