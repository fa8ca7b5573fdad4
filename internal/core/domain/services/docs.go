// Package services provides domain services that work across aggregates.
//
// The package includes:
//   - FilterByRadius: distance annotation and radius filtering over anything with a Location
package services
