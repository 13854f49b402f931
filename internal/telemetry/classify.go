package telemetry

// FlightStage is the coarse phase of flight shown on the mission badge.
type FlightStage string

const (
	StagePreLaunch FlightStage = "Pre-launch"
	StageAscent    FlightStage = "Ascent"
	StageDescent   FlightStage = "Descent"
	StageApogee    FlightStage = "Apogee"
)

// RecoveryStatus is the state of the recovery system.
type RecoveryStatus string

const (
	RecoveryArmed    RecoveryStatus = "Armed"
	RecoveryDeployed RecoveryStatus = "Deployed"
	RecoverySafed    RecoveryStatus = "Safed"
)

// MissionState pairs the two categorical labels derived from a Summary.
type MissionState struct {
	FlightStage    FlightStage    `json:"flight_stage"`
	RecoveryStatus RecoveryStatus `json:"recovery_status"`
}

// Classify evaluates both decision tables against the summary.
func Classify(sum Summary) MissionState {
	return MissionState{
		FlightStage:    ClassifyFlightStage(sum.CurrentAltitude, sum.CurrentVelocity, sum.MaxAltitude),
		RecoveryStatus: ClassifyRecoveryStatus(sum.CurrentAltitude, sum.CurrentVelocity),
	}
}

// ClassifyFlightStage applies the flight-stage table; the first matching rule
// wins and the order of the rules matters.
//
// The Ascent rule requires the current altitude to sit below the window
// maximum, so it rarely fires while the vehicle is setting new peaks.
func ClassifyFlightStage(altitude, velocity, maxAltitude float64) FlightStage {
	altitude, velocity, maxAltitude = numeric(altitude), numeric(velocity), numeric(maxAltitude)

	switch {
	case altitude < 10 && velocity < 10:
		return StagePreLaunch
	case velocity > 0 && altitude < maxAltitude:
		return StageAscent
	case velocity < 0:
		return StageDescent
	default:
		return StageApogee
	}
}

// ClassifyRecoveryStatus applies the recovery table; first match wins.
func ClassifyRecoveryStatus(altitude, velocity float64) RecoveryStatus {
	altitude, velocity = numeric(altitude), numeric(velocity)

	switch {
	case altitude > 100:
		return RecoveryArmed
	case altitude <= 100 && velocity < 0:
		return RecoveryDeployed
	default:
		return RecoverySafed
	}
}
