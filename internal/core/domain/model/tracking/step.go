package tracking

import (
	"math"

	"harvestlog/internal/core/domain/model/kernel"
)

const (
	// DefaultStepDegrees is how far the transporter moves per tick (~220 m).
	DefaultStepDegrees = 0.002
	// DefaultArrivalDegrees is the distance below which the transporter has arrived (~550 m).
	DefaultArrivalDegrees = 0.005
)

// Step moves current toward target along the straight line in degree space by
// stepSize degrees. When current is already within epsilon of target it is
// returned unchanged with arrived set. A step never overshoots the target.
func Step(current, target kernel.Location, stepSize, epsilon float64) (next kernel.Location, arrived bool, err error) {
	dLat := target.Lat() - current.Lat()
	dLng := target.Lng() - current.Lng()
	dist := math.Hypot(dLat, dLng)

	if dist < epsilon {
		return current, true, nil
	}
	if dist <= stepSize {
		return target, false, nil
	}

	ratio := stepSize / dist
	next, err = kernel.NewLocation(current.Lat()+dLat*ratio, current.Lng()+dLng*ratio)
	if err != nil {
		return current, false, err
	}
	return next, false, nil
}
