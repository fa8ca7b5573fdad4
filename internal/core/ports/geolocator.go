package ports

import (
	"context"
	"errors"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
)

// ErrGeolocationUnsupported is returned by devices that cannot report a position.
var ErrGeolocationUnsupported = errors.New("geolocation is not supported")

// PositionOptions mirror the device API: a bound on how long to wait and how
// old a cached fix may be.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// PositionUpdate carries either a new fix or a device error.
type PositionUpdate struct {
	Location kernel.Location
	Err      error
}

// PositionWatch is a continuous subscription to device positions.
type PositionWatch interface {
	Updates() <-chan PositionUpdate
	// Close ends the subscription. It is safe to call more than once.
	Close()
}

// Geolocator obtains the buyer's device position.
type Geolocator interface {
	// CurrentPosition returns one fix, waiting at most opts.Timeout.
	CurrentPosition(ctx context.Context, opts PositionOptions) (kernel.Location, error)

	// Watch subscribes to position changes until the watch is closed or ctx ends.
	Watch(ctx context.Context, opts PositionOptions) (PositionWatch, error)
}
