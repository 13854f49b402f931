package simulator

import (
	"math"
	"math/rand"
	"time"
)

const (
	step             = 0.1
	gravity          = 9.81
	drag             = 0.99
	thrustAccel      = 20.0
	seaLevelPressure = 1013.25
	scaleHeight      = 7400.0
)

// Reading is one simulated telemetry record, in the field layout the flight
// computer sends down.
type Reading struct {
	Time        float64 `json:"time"`
	Altitude    float64 `json:"altitude"`
	Velocity    float64 `json:"velocity"`
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Timestamp   string  `json:"timestamp"`
}

// Clock lets tests pin the wall-clock timestamp on generated readings.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Generator integrates a single-stage ballistic flight: constant thrust for
// the burn, then gravity and drag until the vehicle is back on the ground.
type Generator struct {
	burn  float64
	clock Clock
	rng   *rand.Rand

	flightTime float64
	altitude   float64
	velocity   float64
}

func NewGenerator(burnSeconds float64, seed int64, clock Clock) *Generator {
	if clock == nil {
		clock = realClock{}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		burn:  burnSeconds,
		clock: clock,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Next advances the flight by one reading.
func (g *Generator) Next() Reading {
	if g.flightTime < g.burn {
		g.velocity += thrustAccel * step
	}

	g.altitude += g.velocity * step
	g.velocity -= gravity * step
	g.velocity *= drag

	if g.altitude <= 0 {
		g.altitude = 0
		g.velocity = 0
	}

	g.flightTime++

	return Reading{
		Time:        g.flightTime,
		Altitude:    math.Max(0, g.altitude),
		Velocity:    g.velocity,
		Temperature: 20 + g.rng.Float64()*30,
		Pressure:    seaLevelPressure * math.Pow(2.718, -g.altitude/scaleHeight),
		Timestamp:   g.clock.Now().Format("2006-01-02T15:04:05.000000"),
	}
}
