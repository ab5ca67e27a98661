package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/forcegraph/internal/graph"
)

// StatsSource reports graph counts for the health endpoint.
type StatsSource interface {
	Stats() graph.Stats
}

// Health returns a simple JSON payload to indicate the API is alive,
// with the graph's counts when src is set.
func Health(src StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if src != nil {
			body["graph"] = src.Stats()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}
