package ports

import (
	"context"

	"harvestlog/internal/core/domain/model/tracking"
)

// LocationPublisher pushes live positions to downstream consumers.
type LocationPublisher interface {
	Publish(ctx context.Context, entity tracking.EntityLocation) error
}
