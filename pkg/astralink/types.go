package astralink

import (
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

// Sample is one decoded telemetry record.
type Sample = domain.Sample

// Packet is a raw feed payload as it arrived.
type Packet = domain.Packet

// Snapshot is an immutable view of the telemetry state after one ingest.
type Snapshot = telemetry.Snapshot

// View is the flattened, JSON-friendly form of a Snapshot.
type View = telemetry.View

// State is the single-writer telemetry state behind a runtime.
type State = telemetry.State

type (
	Summary        = telemetry.Summary
	MissionState   = telemetry.MissionState
	FlightStage    = telemetry.FlightStage
	RecoveryStatus = telemetry.RecoveryStatus
)

const (
	StagePreLaunch = telemetry.StagePreLaunch
	StageAscent    = telemetry.StageAscent
	StageDescent   = telemetry.StageDescent
	StageApogee    = telemetry.StageApogee

	RecoveryArmed    = telemetry.RecoveryArmed
	RecoveryDeployed = telemetry.RecoveryDeployed
	RecoverySafed    = telemetry.RecoverySafed
)

// FeedSource streams raw payloads into the pipeline (websocket, OPC UA, serial bridges, simulators).
type FeedSource = ports.FeedSource

// Decoder turns one raw payload into a Sample.
type Decoder = ports.Decoder

// Sink receives every published snapshot, in ingest order.
type Sink = ports.Sink

// QueuedSample represents a decoded sample buffered inside the bounded queue.
type QueuedSample = ports.QueuedSample

// SampleQueue is the bounded, in-memory queue that decouples the feed from the ingest loop.
type SampleQueue = ports.SampleQueue

// Observability emits metrics and structured logs about the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
