package ports

import (
	"context"

	"harvestlog/internal/core/domain/model/chat"
)

// ChatRepository holds the open chat channels keyed by order id. Channels are
// not safe for concurrent use, so every mutation goes through Update.
type ChatRepository interface {
	// Open creates the channel of orderID. Opening an existing channel is a no-op.
	Open(ctx context.Context, orderID, chatID string) error

	// Update runs fn on the channel of orderID while holding the store lock.
	// It returns an errs.ObjectNotFoundError when the channel is not open.
	Update(ctx context.Context, orderID string, fn func(*chat.Channel) error) error

	// Messages returns a copy of the log of orderID, oldest first.
	Messages(ctx context.Context, orderID string) ([]chat.Message, error)

	// Close clears and drops the channel. Closing an unknown channel is not an error.
	Close(ctx context.Context, orderID string) error
}
