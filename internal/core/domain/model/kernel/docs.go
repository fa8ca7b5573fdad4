// Package kernel holds the primitives shared by every aggregate of the
// delivery session: identifiers, geographic locations, party roles and the
// Haversine great-circle distance.
//
// Location values are validated on construction (latitude within ±90°,
// longitude within ±180°) and the zero value fails Validate, so a Location
// obtained from any constructor can be used without further checks.
package kernel
