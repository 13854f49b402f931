package pipeline

import (
	"context"
	"time"

	"github.com/ghalamif/AstraLink/internal/ports"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

// RunIngestPipeline is the single writer of telemetry state. It drains q in
// FIFO order, ingests one sample at a time and hands every resulting
// snapshot to the sinks. It blocks until ctx is cancelled.
func RunIngestPipeline(ctx context.Context, q ports.SampleQueue, state ports.Ingestor, sinks []ports.Sink, pol ports.Policy, obs ports.Observability) {
	idle := pol.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		if ctx.Err() != nil {
			return
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			time.Sleep(idle)
			continue
		}

		for _, item := range batch {
			snap := state.Ingest(item.Sample, item.Raw)
			publish(snap, sinks, obs)

			if !item.ReceivedAt.IsZero() {
				obs.ObserveLatency("astra_ingest_latency_seconds", time.Since(item.ReceivedAt).Seconds())
			}
			recordSnapshotGauges(snap, obs)
		}
		obs.IncCounter("astra_samples_ingested_total", float64(len(batch)))
	}
}

func publish(snap *telemetry.Snapshot, sinks []ports.Sink, obs ports.Observability) {
	for _, s := range sinks {
		if err := s.Publish(snap); err != nil {
			obs.LogError("sink_publish_failed", err, ports.Field{Key: "sink", Value: s.Name()})
		}
	}
}

func recordSnapshotGauges(snap *telemetry.Snapshot, obs ports.Observability) {
	sum := snap.Summary()
	obs.SetGauge("astra_history_length", float64(len(snap.History())))
	obs.SetGauge("astra_current_altitude_meters", sum.CurrentAltitude)
	obs.SetGauge("astra_current_velocity_mps", sum.CurrentVelocity)
	obs.SetGauge("astra_flight_time_seconds", sum.FlightTime)
}
