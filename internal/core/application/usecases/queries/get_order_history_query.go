// Package queries contains read-only use cases: the active order view, the
// chat log and the order history kept by the journal.
package queries

import (
	"errors"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/guard"
)

var ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
	"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
)

// GetOrderHistoryQuery lists the recorded status changes of one order.
//
// Example:
//
//	query, _ := NewGetOrderHistoryQuery(orderID)
//	events, err := handler.Handle(ctx, query)
//	for _, e := range events {
//	    fmt.Printf("%s: %s -> %s\n", e.OccurredAt, e.FromStatus, e.ToStatus)
//	}
type GetOrderHistoryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID kernel.UUID) (GetOrderHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderHistoryQuery{}, err
	}

	return GetOrderHistoryQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderHistoryQueryResponse is one status change.
type GetOrderHistoryQueryResponse struct {
	FromStatus string
	ToStatus   string
	OccurredAt time.Time
}
