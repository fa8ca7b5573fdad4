package tracker

import (
	"time"

	"harvestlog/internal/core/domain/model/tracking"
)

// Identity names a tracked party.
type Identity struct {
	ID   string
	Name string
}

// Offset is a displacement in degrees.
type Offset struct {
	Lat float64
	Lng float64
}

// Config drives bootstrap placement and the transporter simulation.
type Config struct {
	Buyer     Identity
	Seller    Identity
	Transport Identity

	FallbackLat float64
	FallbackLng float64
	// SellerOffset and TransportOffset place the demo parties relative to the buyer.
	SellerOffset    Offset
	TransportOffset Offset

	GeolocationTimeout time.Duration
	GeolocationMaxAge  time.Duration

	// StepSchedule is a robfig/cron spec such as "@every 3s".
	StepSchedule   string
	StepDegrees    float64
	ArrivalDegrees float64
}

// DefaultConfig returns the demo session settings.
func DefaultConfig() Config {
	return Config{
		Buyer:              Identity{ID: "buyer-demo-001", Name: "Rajesh Kumar"},
		Seller:             Identity{ID: "seller-demo-001", Name: "Priya Sharma"},
		Transport:          Identity{ID: "transporter-demo-001", Name: "Amit Singh"},
		FallbackLat:        28.6139,
		FallbackLng:        77.2090,
		SellerOffset:       Offset{Lat: 0.015, Lng: 0.025},
		TransportOffset:    Offset{Lat: -0.020, Lng: -0.015},
		GeolocationTimeout: 15 * time.Second,
		GeolocationMaxAge:  5 * time.Second,
		StepSchedule:       "@every 3s",
		StepDegrees:        tracking.DefaultStepDegrees,
		ArrivalDegrees:     tracking.DefaultArrivalDegrees,
	}
}
