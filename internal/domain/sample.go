package domain

import (
	"math"
	"time"
)

// Sample is one telemetry reading from the vehicle. Fields missing from the
// wire record, or carrying non-numeric values, are zero.
type Sample struct {
	Time        float64            `json:"time"`
	Altitude    float64            `json:"altitude"`
	Velocity    float64            `json:"velocity"`
	Temperature float64            `json:"temperature"`
	Pressure    float64            `json:"pressure"`
	Extra       map[string]float64 `json:"extra,omitempty"`
}

// Finite returns a copy of s with NaN and ±Inf fields set to zero and
// non-finite Extra entries dropped. Extra is copied only when it changes.
func (s Sample) Finite() Sample {
	s.Time = finiteOrZero(s.Time)
	s.Altitude = finiteOrZero(s.Altitude)
	s.Velocity = finiteOrZero(s.Velocity)
	s.Temperature = finiteOrZero(s.Temperature)
	s.Pressure = finiteOrZero(s.Pressure)

	for _, v := range s.Extra {
		if !isFinite(v) {
			s.Extra = finiteExtra(s.Extra)
			break
		}
	}
	return s
}

func finiteExtra(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if isFinite(v) {
			out[k] = v
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}

// Packet is a raw feed message exactly as it arrived.
type Packet struct {
	Raw        string
	ReceivedAt time.Time
}
