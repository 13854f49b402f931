package ports

import (
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

// Sink receives every snapshot published by the ingest loop, in order.
type Sink interface {
	Publish(snap *telemetry.Snapshot) error
	Name() string
}

// Ingestor is the single writer of telemetry state.
type Ingestor interface {
	Ingest(sample domain.Sample, raw string) *telemetry.Snapshot
}
