package jobs

import (
	"context"

	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/domain/model/routing"
)

// ActiveOrderReader returns the session's active order, or nil.
type ActiveOrderReader interface {
	Active(ctx context.Context) (*order.Order, error)
}

// LocationSource exposes the tracker state.
type LocationSource interface {
	Snapshot() tracker.Snapshot
}

// RouteComputer refreshes the route triple.
type RouteComputer interface {
	Compute(ctx context.Context, buyer, seller, transport kernel.Location, enabled bool) routing.Routes
}

// Announcer posts system messages to the order chat.
type Announcer interface {
	Post(ctx context.Context, orderID, content string)
}
