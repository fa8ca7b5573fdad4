package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/metrics"
)

// OrderAnnouncer posts system messages into the order chat.
type OrderAnnouncer struct {
	chats   ports.ChatRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     Clock
}

func NewOrderAnnouncer(chats ports.ChatRepository, m *metrics.Metrics, logger *slog.Logger, now Clock) *OrderAnnouncer {
	if now == nil {
		now = time.Now
	}

	return &OrderAnnouncer{
		chats:   chats,
		metrics: m,
		logger:  logger.With("component", "OrderAnnouncer"),
		now:     now,
	}
}

// StatusMessage returns the notice posted when an order reaches status, or "".
func StatusMessage(status order.Status) string {
	//nolint:exhaustive // other statuses are announced by their handlers
	switch status {
	case order.InTransit:
		return "Order is now in transit"
	case order.Delivered:
		return "Order delivered successfully!"
	case order.Completed:
		return "Order completed. Chat will close."
	case order.Cancelled:
		return "Order cancelled"
	default:
		return ""
	}
}

// AnnounceStatus posts the notice for the current status of o, if it has one.
func (a *OrderAnnouncer) AnnounceStatus(ctx context.Context, o *order.Order) {
	if msg := StatusMessage(o.Status()); msg != "" {
		a.Post(ctx, o.ID().String(), msg)
	}
}

// Post appends a system message. Orders without an open chat are skipped.
func (a *OrderAnnouncer) Post(ctx context.Context, orderID, content string) {
	err := a.chats.Update(ctx, orderID, func(c *chat.Channel) error {
		c.AddSystemMessage(content, a.now())
		return nil
	})

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		a.logger.DebugContext(ctx, "no chat to announce to", "order_id", orderID)
	case err != nil:
		a.logger.WarnContext(ctx, "failed to post system message", "order_id", orderID, "error", err)
	default:
		a.metrics.ChatMessage(string(chat.KindSystem), "accepted")
	}
}
