package queries

import (
	"context"

	"harvestlog/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler reads the order_events table written by the journal.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns the events oldest first. An order without events is
// reported as an errs.ObjectNotFoundError.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			from_status,
			to_status,
			occurred_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY occurred_at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]GetOrderHistoryQueryResponse, 0)
	for rows.Next() {
		var event GetOrderHistoryQueryResponse
		if err = rows.Scan(&event.FromStatus, &event.ToStatus, &event.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, errs.NewObjectNotFoundError("order history", query.OrderID().String())
	}

	return events, nil
}
