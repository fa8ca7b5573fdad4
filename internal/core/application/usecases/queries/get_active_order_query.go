package queries

import (
	"context"

	"harvestlog/internal/core/domain/model/order"
)

// ActiveOrderSource is implemented by the order lifecycle.
type ActiveOrderSource interface {
	Active(ctx context.Context) (*order.Order, error)
	LastError() string
}

// GetActiveOrderQueryResponse is what the presentation layer renders: the
// order, if any, and the last lifecycle error message.
type GetActiveOrderQueryResponse struct {
	Order *order.Order
	Error string
}

// GetActiveOrderQueryHandler reads the active order of the session.
type GetActiveOrderQueryHandler struct {
	source ActiveOrderSource
}

func NewGetActiveOrderQueryHandler(source ActiveOrderSource) GetActiveOrderQueryHandler {
	return GetActiveOrderQueryHandler{source: source}
}

func (h GetActiveOrderQueryHandler) Handle(ctx context.Context) (GetActiveOrderQueryResponse, error) {
	active, err := h.source.Active(ctx)
	if err != nil {
		return GetActiveOrderQueryResponse{}, err
	}

	return GetActiveOrderQueryResponse{
		Order: active,
		Error: h.source.LastError(),
	}, nil
}
