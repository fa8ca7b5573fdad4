package tracking_test

import (
	"math"
	"testing"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

func TestStep(t *testing.T) {
	t.Run("should move a fixed distance toward the target", func(t *testing.T) {
		current := loc(t, 0, 0)
		target := loc(t, 0.03, 0.04)

		next, arrived, err := tracking.Step(current, target, 0.002, 0.005)

		require.NoError(t, err)
		assert.False(t, arrived)
		assert.InDelta(t, 0.0012, next.Lat(), 1e-12)
		assert.InDelta(t, 0.0016, next.Lng(), 1e-12)
		assert.InDelta(t, 0.002, math.Hypot(next.Lat(), next.Lng()), 1e-12)
	})

	t.Run("should report arrival within epsilon", func(t *testing.T) {
		current := loc(t, 10, 10)
		target := loc(t, 10.003, 10)

		next, arrived, err := tracking.Step(current, target, 0.002, 0.005)

		require.NoError(t, err)
		assert.True(t, arrived)
		assert.Equal(t, current, next)
	})

	t.Run("should not overshoot", func(t *testing.T) {
		current := loc(t, 10, 10)
		target := loc(t, 10.001, 10)

		next, arrived, err := tracking.Step(current, target, 0.002, 0.0005)

		require.NoError(t, err)
		assert.False(t, arrived)
		assert.Equal(t, target, next)
	})

	t.Run("should converge from the default offsets", func(t *testing.T) {
		seller := loc(t, 28.6289, 77.2340)
		transport := loc(t, 28.5939, 77.1940)

		ticks := 0
		for ; ticks < 100; ticks++ {
			next, arrived, err := tracking.Step(transport, seller, tracking.DefaultStepDegrees, tracking.DefaultArrivalDegrees)
			require.NoError(t, err)
			if arrived {
				break
			}
			transport = next
		}

		assert.Less(t, ticks, 100)
		assert.Less(t, math.Hypot(seller.Lat()-transport.Lat(), seller.Lng()-transport.Lng()), tracking.DefaultArrivalDegrees)
	})
}

func TestEntityLocation(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("should move and restamp", func(t *testing.T) {
		e, err := tracking.NewEntityLocation("transport-1", kernel.RoleTransport, "Kiran", loc(t, 1, 1), true, at)
		require.NoError(t, err)

		moved := e.MovedTo(loc(t, 2, 2), at.Add(time.Second))

		assert.InDelta(t, 2.0, moved.Location().Lat(), 1e-12)
		assert.Equal(t, at.Add(time.Second), moved.LastUpdated())
		assert.InDelta(t, 1.0, e.Location().Lat(), 1e-12)
		assert.Equal(t, "Kiran", moved.Name())
		require.NoError(t, moved.Validate())
	})

	t.Run("should validate inputs", func(t *testing.T) {
		_, err := tracking.NewEntityLocation("", kernel.Role("x"), "", kernel.Location{}, false, at)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "entity id")
		assert.Contains(t, err.Error(), "role")
		assert.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
		require.ErrorIs(t, tracking.EntityLocation{}.Validate(), tracking.ErrEntityLocationIsNotConstructed)
	})
}
