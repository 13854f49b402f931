package ports

import "github.com/ghalamif/AstraLink/internal/domain"

// FeedSource streams raw telemetry packets, in arrival order, into the
// pipeline. It owns exactly one upstream connection between Start and Stop.
type FeedSource interface {
	Start(out chan<- *domain.Packet) error
	Stop() error
	Name() string
}
