package telemetry

import "math"

// SignalBars is the number of segments on the link-strength indicator.
const SignalBars = 4

// SignalStrength maps altitude onto the indicator: one bar per 250 m, at
// least one and at most SignalBars lit.
func SignalStrength(altitude float64) [SignalBars]bool {
	strength := math.Floor(numeric(altitude) / 250)
	if strength < 1 {
		strength = 1
	}
	if strength > SignalBars {
		strength = SignalBars
	}

	var bars [SignalBars]bool
	for i := range bars {
		bars[i] = float64(i) < strength
	}
	return bars
}
