// Package ports defines the contracts between the application core and its
// adapters: session stores, the order journal and the device and routing gateways.
package ports

import (
	"context"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
)

// OrderRepository stores order aggregates for the running session.
type OrderRepository interface {
	// Add stores a new order. Implementations with a capacity limit return
	// an errs.ObjectAlreadyExistsError when full.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update replaces a stored order. The order must already exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns a copy of the order with the given id or an
	// errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetActive returns the single order of the session, or nil when there is none.
	GetActive(ctx context.Context) (*order.Order, error)

	// Remove drops the order. Removing an unknown id is not an error.
	Remove(ctx context.Context, id kernel.UUID) error
}
