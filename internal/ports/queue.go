package ports

import (
	"time"

	"github.com/ghalamif/AstraLink/internal/domain"
)

// QueuedSample is a decoded sample waiting for the ingest loop, together with
// the payload it was decoded from.
type QueuedSample struct {
	Sample     domain.Sample
	Raw        string
	ReceivedAt time.Time
}

type SampleQueue interface {
	Enqueue(item QueuedSample) bool
	DequeueBatch(max int) []QueuedSample
	Len() int
}
