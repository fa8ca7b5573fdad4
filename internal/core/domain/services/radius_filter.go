package services

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"
)

// Located is anything with a position, such as a tracked entity or a party snapshot.
type Located interface {
	Location() kernel.Location
}

// Nearby pairs an item with its distance from the reference point.
type Nearby[T Located] struct {
	Item       T
	DistanceKm float64
}

// FilterByRadius annotates every item with its Haversine distance from
// (refLat, refLng), keeps those within radiusKm and sorts them nearest first.
// Items at the same distance keep their input order.
//
// Example:
//
//	nearby, err := services.FilterByRadius(entities, 28.6139, 77.2090, 50)
//	for _, n := range nearby {
//	    fmt.Printf("%s is %.1f km away\n", n.Item.Name(), n.DistanceKm)
//	}
func FilterByRadius[T Located](items []T, refLat, refLng, radiusKm float64) ([]Nearby[T], error) {
	ref, err := kernel.NewLocation(refLat, refLng)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("radius", fmt.Errorf("%v is negative", radiusKm))
	}

	result := make([]Nearby[T], 0, len(items))
	for _, item := range items {
		d, err := ref.DistanceKm(item.Location())
		if err != nil {
			return nil, err
		}
		if d <= radiusKm {
			result = append(result, Nearby[T]{Item: item, DistanceKm: d})
		}
	}

	slices.SortStableFunc(result, func(a, b Nearby[T]) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	return result, nil
}
