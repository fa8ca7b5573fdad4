package commands

import (
	"context"
	"errors"
	"time"

	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/metrics"
)

// ErrNoChatContext is returned when there is no active order with an open chat.
var ErrNoChatContext = errors.New("no active order chat")

// SendChatMessageCommandHandler appends participant messages to the chat of
// the active order, applying the channel's flood and content rules.
type SendChatMessageCommandHandler struct {
	orders  ActiveOrderReader
	chats   ports.ChatRepository
	metrics *metrics.Metrics
	now     Clock
}

func NewSendChatMessageCommandHandler(
	orders ActiveOrderReader,
	chats ports.ChatRepository,
	m *metrics.Metrics,
	now Clock,
) SendChatMessageCommandHandler {
	if now == nil {
		now = time.Now
	}

	return SendChatMessageCommandHandler{
		orders:  orders,
		chats:   chats,
		metrics: m,
		now:     now,
	}
}

func (h SendChatMessageCommandHandler) Handle(ctx context.Context, command SendChatMessageCommand) (chat.Message, error) {
	if err := command.Validate(); err != nil {
		return chat.Message{}, err
	}

	active, err := h.orders.Active(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	if active == nil || active.ChatID() == "" {
		h.metrics.ChatMessage(string(chat.KindText), "no_context")
		return chat.Message{}, ErrNoChatContext
	}

	var sent chat.Message
	err = h.chats.Update(ctx, active.ID().String(), func(c *chat.Channel) error {
		msg, sendErr := c.Send(command.Sender(), command.Content(), h.now())
		sent = msg
		return sendErr
	})

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		h.metrics.ChatMessage(string(chat.KindText), "no_context")
		return chat.Message{}, ErrNoChatContext
	case errors.Is(err, chat.ErrFloodControl):
		h.metrics.ChatMessage(string(chat.KindText), "flood")
		return chat.Message{}, err
	case err != nil:
		h.metrics.ChatMessage(string(chat.KindText), "rejected")
		return chat.Message{}, err
	}

	h.metrics.ChatMessage(string(chat.KindText), "accepted")
	return sent, nil
}
