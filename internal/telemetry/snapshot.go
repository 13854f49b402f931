package telemetry

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/ghalamif/AstraLink/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is a read-only view of the telemetry state after one ingestion.
// The slices it hands out are shared with later snapshots and must not be
// modified by callers.
type Snapshot struct {
	history    []domain.Sample
	packetLog  []string
	flightTime float64
	ingested   uint64
}

// History returns the sample window, oldest first.
func (s *Snapshot) History() []domain.Sample { return s.history }

// PacketLog returns the raw packet log, newest first.
func (s *Snapshot) PacketLog() []string { return s.packetLog }

// FlightTime is the time field of the last ingested sample.
func (s *Snapshot) FlightTime() float64 { return s.flightTime }

// Ingested counts samples ingested since the state was created.
func (s *Snapshot) Ingested() uint64 { return s.ingested }

// Latest returns the newest sample in the window.
func (s *Snapshot) Latest() (domain.Sample, bool) {
	if len(s.history) == 0 {
		return domain.Sample{}, false
	}
	return s.history[len(s.history)-1], true
}

// Summary recomputes the scalar aggregates from the window.
func (s *Snapshot) Summary() Summary {
	return Summarize(s.history, s.flightTime)
}

// Mission classifies the current flight stage and recovery status.
func (s *Snapshot) Mission() MissionState {
	return Classify(s.Summary())
}

// Signal returns the link-strength indicator for the current altitude.
func (s *Snapshot) Signal() [SignalBars]bool {
	return SignalStrength(s.Summary().CurrentAltitude)
}

// View is the flattened form of a snapshot handed to renderers.
type View struct {
	History        []domain.Sample  `json:"history"`
	PacketLog      []string         `json:"packet_log"`
	Summary        Summary          `json:"summary"`
	Mission        MissionState     `json:"mission"`
	SignalStrength [SignalBars]bool `json:"signal_strength"`
	Ingested       uint64           `json:"ingested"`
}

// View evaluates every derived field once and returns them together.
func (s *Snapshot) View() View {
	sum := s.Summary()
	history := s.history
	if history == nil {
		history = []domain.Sample{}
	}
	packets := s.packetLog
	if packets == nil {
		packets = []string{}
	}
	return View{
		History:        history,
		PacketLog:      packets,
		Summary:        sum,
		Mission:        Classify(sum),
		SignalStrength: SignalStrength(sum.CurrentAltitude),
		Ingested:       s.ingested,
	}
}

// MarshalJSON encodes the snapshot as its View.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}
