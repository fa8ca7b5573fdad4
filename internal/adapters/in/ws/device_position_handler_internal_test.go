package ws

import (
	"encoding/json"
	"log/slog"
	"testing"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardSink struct{}

func (discardSink) Push(kernel.Location) error { return nil }

func (discardSink) PushError(error) {}

func TestHandle_PositionWithoutCoordinates(t *testing.T) {
	h := NewDevicePositionHandler(discardSink{}, nil, slog.New(slog.DiscardHandler))

	err := h.handle(frame{Type: "position", Data: json.RawMessage(`{"lat":10}`)})

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Contains(t, err.Error(), "position")
	assert.Contains(t, err.Error(), "lat and lng are required")
}
