package kernel_test

import (
	"testing"

	"harvestlog/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("identical points are zero apart", func(t *testing.T) {
		assert.Equal(t, 0.0, kernel.HaversineDistance(28.6139, 77.2090, 28.6139, 77.2090))
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		pairs := [][4]float64{
			{28.6139, 77.2090, 28.6289, 77.2340},
			{28.6139, 77.2090, 19.0760, 72.8777},
			{-33.8688, 151.2093, 51.5074, -0.1278},
			{0, 179.9, 0, -179.9},
		}

		for _, p := range pairs {
			assert.Equal(t,
				kernel.HaversineDistance(p[0], p[1], p[2], p[3]),
				kernel.HaversineDistance(p[2], p[3], p[0], p[1]))
		}
	})

	t.Run("rounds to one decimal place", func(t *testing.T) {
		d := kernel.HaversineDistance(28.6139, 77.2090, 28.6289, 77.2340)

		assert.Equal(t, 3.0, d)
	})

	t.Run("one degree of latitude is about 111.2 km", func(t *testing.T) {
		assert.Equal(t, 111.2, kernel.HaversineDistance(0, 0, 1, 0))
	})

	t.Run("antipodal points are half the circumference apart", func(t *testing.T) {
		assert.InDelta(t, 20015.1, kernel.HaversineDistance(0, 0, 0, 180), 0.1)
	})
}
