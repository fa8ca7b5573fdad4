package kernel

import (
	"errors"
	"fmt"
	"math"

	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

const (
	// MinLatitude is the southernmost valid latitude in degrees.
	MinLatitude = -90.0
	// MaxLatitude is the northernmost valid latitude in degrees.
	MaxLatitude = 90.0
	// MinLongitude is the westernmost valid longitude in degrees.
	MinLongitude = -180.0
	// MaxLongitude is the easternmost valid longitude in degrees.
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

var errNotANumber = errors.New("not a number")

// Location is an immutable WGS84 point expressed in decimal degrees.
// The zero value is invalid; use NewLocation.
//
// Example:
//
//	loc, err := kernel.NewLocation(28.6139, 77.2090)
//	if err != nil {
//	    // coordinates out of range
//	}
//	fmt.Println(loc) // Location(28.613900,77.209000)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation validates lat ∈ [-90,90] and lng ∈ [-180,180] and builds a Location.
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate reports whether the location was built through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in degrees.
func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lng)
}

// IsEqual compares two constructed locations coordinate by coordinate.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lng == other.lng, nil
}

// DistanceKm returns the great-circle distance to other in kilometers,
// rounded to one decimal place. See HaversineDistance.
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return HaversineDistance(l.lat, l.lng, other.lat, other.lng), nil
}

// Offset shifts the location by the given number of degrees. Latitude is
// clamped to the poles and longitude wraps around the antimeridian, so the
// result is always a valid Location.
func (l Location) Offset(dLat, dLng float64) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}

	lat := math.Max(MinLatitude, math.Min(MaxLatitude, l.lat+dLat))
	lng := l.lng + dLng
	for lng > MaxLongitude {
		lng -= 360
	}
	for lng < MinLongitude {
		lng += 360
	}

	return NewLocation(lat, lng)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) {
		return errs.NewValueIsOutOfRangeErrorWithCause("lat", lat, MinLatitude, MaxLatitude, errNotANumber)
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if math.IsNaN(lng) {
		return errs.NewValueIsOutOfRangeErrorWithCause("lng", lng, MinLongitude, MaxLongitude, errNotANumber)
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	l.lng = lng
	return nil
}
