package routing

import (
	"fmt"
	"math"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"
)

// Route is a driving route between two points as reported by the routing service.
type Route struct {
	coordinates     []kernel.Location
	distanceKm      float64
	durationMinutes float64
}

// NewRoute builds a route from a polyline in (lat,lng) order, a distance in
// meters and a duration in seconds. Distance is kept in km rounded to one
// decimal and duration in whole minutes.
func NewRoute(coordinates []kernel.Location, distanceMeters, durationSeconds float64) (*Route, error) {
	if len(coordinates) < 2 {
		return nil, errs.NewValueIsInvalidErrorWithCause("coordinates",
			fmt.Errorf("route needs at least 2 points, got %d", len(coordinates)))
	}
	if math.IsNaN(distanceMeters) || distanceMeters < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("distance", fmt.Errorf("%v is negative", distanceMeters))
	}
	if math.IsNaN(durationSeconds) || durationSeconds < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("duration", fmt.Errorf("%v is negative", durationSeconds))
	}

	coords := make([]kernel.Location, len(coordinates))
	copy(coords, coordinates)

	return &Route{
		coordinates:     coords,
		distanceKm:      math.Round(distanceMeters/1000*10) / 10,
		durationMinutes: math.Round(durationSeconds / 60),
	}, nil
}

func (r *Route) Coordinates() []kernel.Location {
	out := make([]kernel.Location, len(r.coordinates))
	copy(out, r.coordinates)
	return out
}

func (r *Route) DistanceKm() float64 {
	return r.distanceKm
}

func (r *Route) DurationMinutes() float64 {
	return r.durationMinutes
}

// Routes is the triple computed for a live order. Each leg is nil when no
// route is available.
type Routes struct {
	BuyerToSeller     *Route
	SellerToTransport *Route
	BuyerToTransport  *Route
}
