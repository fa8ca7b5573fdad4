package commands

import (
	"context"

	"harvestlog/internal/core/domain/model/order"
)

// TrackingController starts and stops live tracking for the active order.
type TrackingController interface {
	StartTracking(ctx context.Context) error
	// StopTracking is idempotent.
	StopTracking()
}

// ActiveOrderReader exposes the active order of the session.
type ActiveOrderReader interface {
	Active(ctx context.Context) (*order.Order, error)
}
