package astralink

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/ghalamif/AstraLink/internal/ports"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotHandler serves the current snapshot as JSON to renderers.
func snapshotHandler(state *telemetry.State, obs ports.Observability) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(state.Snapshot().View()); err != nil {
			obs.LogError("snapshot_encode_failed", err)
		}
	})
}
