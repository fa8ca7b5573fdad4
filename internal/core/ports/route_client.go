package ports

import (
	"context"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/routing"
)

// RouteClient fetches a driving route between two points.
type RouteClient interface {
	// FetchRoute returns nil without error when the service has no route.
	FetchRoute(ctx context.Context, from, to kernel.Location) (*routing.Route, error)
}
