package layout

import "math"

// TickStats describes the most recent CalculateNextCoordinates call.
type TickStats struct {
	Nodes     int
	Static    int
	Edges     int
	Regions   int
	TreeDepth int
	// NonFinite counts nodes whose update produced NaN or Inf and were held
	// at their previous position instead.
	NonFinite int

	NonFiniteIDs []NodeID
}

// Simulation computes one overdamped step of the force-directed layout.
// It keeps no state between ticks besides its random source, and is not
// safe for concurrent use.
type Simulation struct {
	params  Params
	vectors *DistanceVectorGenerator
	stats   TickStats
}

// NewSimulation returns a simulation drawing fallback directions from rnd.
func NewSimulation(p Params, rnd Random) *Simulation {
	return &Simulation{params: p, vectors: NewDistanceVectorGenerator(rnd)}
}

// Params returns the simulation constants.
func (s *Simulation) Params() Params { return s.params }

// LastStats returns statistics for the previous tick.
func (s *Simulation) LastStats() TickStats { return s.stats }

// CalculateNextCoordinates returns the next position of every non-static
// node in g. Static nodes still exert forces but are never part of the
// result. Each position is advanced by (force / mass) * dtSec; no velocity
// carries over between calls. All forces are computed from g before any
// position is produced.
func (s *Simulation) CalculateNextCoordinates(g *Snapshot, dtSec float64, static NodeSet) map[NodeID]Point {
	s.stats = TickStats{}
	next := make(map[NodeID]Point)
	if g == nil || len(g.Nodes) == 0 {
		return next
	}
	if !(dtSec > 0) || math.IsInf(dtSec, 0) {
		dtSec = 0
	}

	bodies, index := s.bodies(g.Nodes)
	tree := BuildQuadTree(bodies, s.params.MinRegionSize)
	s.stats.Nodes = len(bodies)
	s.stats.Regions = tree.Len()
	s.stats.TreeDepth = tree.Depth()

	forces := make([]Vector, len(bodies))
	for i, b := range bodies {
		if static.Has(b.ID) {
			s.stats.Static++
			continue
		}
		forces[i] = tree.ForceOn(i, s.vectors, s.params)
	}

	for _, e := range g.Edges {
		fi, okFrom := index[e.From]
		ti, okTo := index[e.To]
		if !okFrom || !okTo || fi == ti {
			continue
		}
		s.stats.Edges++
		fromStatic, toStatic := static.Has(e.From), static.Has(e.To)
		if fromStatic && toStatic {
			continue
		}
		onFrom, onTo := ForceAlong(s.vectors, bodies[fi].Position, bodies[ti].Position, s.params)
		if !fromStatic {
			forces[fi] = forces[fi].Add(onFrom)
		}
		if !toStatic {
			forces[ti] = forces[ti].Add(onTo)
		}
	}

	for i, b := range bodies {
		if static.Has(b.ID) {
			continue
		}
		p := b.Position.Add(forces[i].Scale(dtSec / b.Mass))
		if !p.IsFinite() {
			s.stats.NonFinite++
			s.stats.NonFiniteIDs = append(s.stats.NonFiniteIDs, b.ID)
			p = b.Position
		}
		next[b.ID] = p
	}
	return next
}

// bodies converts snapshot nodes into tree bodies, filling defaults. A
// repeated id keeps its first occurrence.
func (s *Simulation) bodies(nodes []Node) ([]Body, map[NodeID]int) {
	bodies := make([]Body, 0, len(nodes))
	index := make(map[NodeID]int, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		b := Body{ID: n.ID, Position: n.Position, Mass: n.Mass, Charge: n.Charge}
		if !(b.Mass > 0) {
			b.Mass = s.params.NodeMass
		}
		if b.Charge == 0 {
			b.Charge = s.params.NodeCharge
		}
		index[n.ID] = len(bodies)
		bodies = append(bodies, b)
	}
	return bodies, index
}
