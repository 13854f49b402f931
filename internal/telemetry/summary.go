package telemetry

import (
	"math"

	"github.com/ghalamif/AstraLink/internal/domain"
)

// Summary holds the scalar aggregates a ground display shows next to the charts.
type Summary struct {
	MaxAltitude     float64 `json:"max_altitude"`
	MaxVelocity     float64 `json:"max_velocity"`
	CurrentAltitude float64 `json:"current_altitude"`
	CurrentVelocity float64 `json:"current_velocity"`
	FlightTime      float64 `json:"flight_time"`
}

// Summarize derives a Summary from the history window. It walks the whole
// window on every call so an evicted maximum ages out immediately.
func Summarize(history []domain.Sample, flightTime float64) Summary {
	sum := Summary{FlightTime: numeric(flightTime)}
	if len(history) == 0 {
		return sum
	}

	sum.MaxAltitude = numeric(history[0].Altitude)
	sum.MaxVelocity = numeric(history[0].Velocity)
	for _, s := range history[1:] {
		if alt := numeric(s.Altitude); alt > sum.MaxAltitude {
			sum.MaxAltitude = alt
		}
		if vel := numeric(s.Velocity); vel > sum.MaxVelocity {
			sum.MaxVelocity = vel
		}
	}

	last := history[len(history)-1]
	sum.CurrentAltitude = numeric(last.Altitude)
	sum.CurrentVelocity = numeric(last.Velocity)
	return sum
}

// numeric maps NaN and ±Inf to zero; every other value passes through.
func numeric(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
