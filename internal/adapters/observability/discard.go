package observability

import "github.com/ghalamif/AstraLink/internal/ports"

// Discard drops every log line and metric. Adapters fall back to it when no
// observability backend is supplied.
var Discard ports.Observability = discard{}

type discard struct{}

func (discard) LogInfo(string, ...ports.Field)            {}
func (discard) LogError(string, error, ...ports.Field)    {}
func (discard) LogCritical(string, error, ...ports.Field) {}
func (discard) IncCounter(string, float64)                {}
func (discard) ObserveLatency(string, float64)            {}
func (discard) SetGauge(string, float64)                  {}

// OrDiscard returns obs, or Discard when obs is nil.
func OrDiscard(obs ports.Observability) ports.Observability {
	if obs == nil {
		return Discard
	}
	return obs
}
