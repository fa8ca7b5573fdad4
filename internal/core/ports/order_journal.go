package ports

import (
	"context"

	"harvestlog/internal/core/domain/model/order"
)

// OrderJournal keeps an append-only audit trail of order lifecycle changes.
type OrderJournal interface {
	// Record upserts the order snapshot and appends a from -> aggregate.Status()
	// event in one transaction.
	Record(ctx context.Context, aggregate *order.Order, from order.Status) error
}
