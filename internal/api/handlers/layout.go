package handlers

import (
	"net/http"
	"time"

	"github.com/onnwee/forcegraph/internal/layout"
)

// LayoutInfo exposes the running layout's effective settings.
type LayoutInfo interface {
	Params() layout.Params
	StaticNodeIDs() []layout.NodeID
	Ticks() uint64
}

// ParamsDoc is layout.Params on the wire.
type ParamsDoc struct {
	NodeMass              float64 `json:"node_mass"`
	NodeCharge            float64 `json:"node_charge"`
	RepulsionCoefficient  float64 `json:"repulsion_coefficient"`
	MaxForce              float64 `json:"max_force"`
	EdgeEquilibriumLength float64 `json:"edge_equilibrium_length"`
	EdgeStiffness         float64 `json:"edge_stiffness"`
	EffectiveDistance     float64 `json:"effective_distance"`
	MinRegionSize         float64 `json:"min_region_size"`
}

// LayoutConfigResponse is the body of GET /api/layout/config.
type LayoutConfigResponse struct {
	Params          ParamsDoc       `json:"params"`
	MaxTimeDeltaMs  int64           `json:"max_time_delta_ms"`
	FrameIntervalMs int64           `json:"frame_interval_ms"`
	StaticNodes     []layout.NodeID `json:"static_nodes"`
	Ticks           uint64          `json:"ticks"`
}

// LayoutConfig returns the effective layout parameters and frame clock
// settings.
// GET /api/layout/config
func LayoutConfig(info LayoutInfo, maxTimeDelta, frameInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := info.Params()
		static := info.StaticNodeIDs()
		if static == nil {
			static = []layout.NodeID{}
		}
		writeJSON(w, http.StatusOK, LayoutConfigResponse{
			Params: ParamsDoc{
				NodeMass:              p.NodeMass,
				NodeCharge:            p.NodeCharge,
				RepulsionCoefficient:  p.RepulsionCoefficient,
				MaxForce:              p.MaxForce,
				EdgeEquilibriumLength: p.EdgeEquilibriumLength,
				EdgeStiffness:         p.EdgeStiffness,
				EffectiveDistance:     p.EffectiveDistance,
				MinRegionSize:         p.MinRegionSize,
			},
			MaxTimeDeltaMs:  maxTimeDelta.Milliseconds(),
			FrameIntervalMs: frameInterval.Milliseconds(),
			StaticNodes:     static,
			Ticks:           info.Ticks(),
		})
	}
}
