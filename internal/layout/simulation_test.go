package layout

import (
	"errors"
	"math"
	"testing"
)

func snapshot(points map[NodeID]Point, order []NodeID, edges ...Edge) *Snapshot {
	s := &Snapshot{Edges: edges}
	for _, id := range order {
		s.Nodes = append(s.Nodes, Node{ID: id, Position: points[id]})
	}
	return s
}

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestCalculateNextCoordinatesEmpty(t *testing.T) {
	sim := NewSimulation(DefaultParams(), NewRandom(1))
	if got := sim.CalculateNextCoordinates(&Snapshot{}, 0.02, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if got := sim.CalculateNextCoordinates(nil, 0.02, NewNodeSet()); len(got) != 0 {
		t.Errorf("expected empty result for nil snapshot, got %v", got)
	}
}

func TestCalculateNextCoordinatesOmitsStatic(t *testing.T) {
	points := map[NodeID]Point{"a": {0, 0}, "b": {50, 0}, "c": {0, 50}}
	g := snapshot(points, []NodeID{"a", "b", "c"}, Edge{From: "a", To: "b"})

	sim := NewSimulation(DefaultParams(), NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.02, NewNodeSet("b"))

	if _, ok := next["b"]; ok {
		t.Error("static node b must not be in the result")
	}
	if len(next) != 2 {
		t.Errorf("expected 2 moved nodes, got %d", len(next))
	}
	if stats := sim.LastStats(); stats.Static != 1 || stats.Nodes != 3 || stats.Edges != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCalculateNextCoordinatesStaticStillRepels(t *testing.T) {
	points := map[NodeID]Point{"a": {0, 0}, "pin": {10, 0}}
	g := snapshot(points, []NodeID{"a", "pin"})

	sim := NewSimulation(DefaultParams(), NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.02, NewNodeSet("pin"))
	if next["a"].X >= 0 {
		t.Errorf("a should be pushed away from the pinned node, got %+v", next["a"])
	}
}

func TestCalculateNextCoordinatesZeroDt(t *testing.T) {
	points := map[NodeID]Point{"a": {0, 0}, "b": {3, 4}}
	g := snapshot(points, []NodeID{"a", "b"}, Edge{From: "a", To: "b"})

	sim := NewSimulation(DefaultParams(), NewRandom(1))
	for _, dt := range []float64{0, -1, math.NaN()} {
		next := sim.CalculateNextCoordinates(g, dt, nil)
		for id, p := range next {
			if p != points[id] {
				t.Errorf("dt=%v moved %s from %+v to %+v", dt, id, points[id], p)
			}
		}
	}
}

func TestCalculateNextCoordinatesSpringContracts(t *testing.T) {
	params := DefaultParams()
	params.NodeCharge = 1
	points := map[NodeID]Point{"a": {0, 0}, "b": {1000, 0}}
	g := snapshot(points, []NodeID{"a", "b"}, Edge{From: "a", To: "b"})

	sim := NewSimulation(params, NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.02, nil)
	if d := dist(next["a"], next["b"]); d >= 1000 {
		t.Errorf("stretched edge should contract, distance now %v", d)
	}
}

func TestCalculateNextCoordinatesSeparatesCoincident(t *testing.T) {
	points := map[NodeID]Point{"a": {5, 5}, "b": {5, 5}}
	g := snapshot(points, []NodeID{"a", "b"}, Edge{From: "a", To: "b"})

	sim := NewSimulation(DefaultParams(), NewRandom(11))
	next := sim.CalculateNextCoordinates(g, 0.02, nil)
	if next["a"] == next["b"] {
		t.Errorf("coincident nodes did not separate: %+v", next)
	}
	for id, p := range next {
		if !p.IsFinite() {
			t.Errorf("node %s has non-finite position %+v", id, p)
		}
	}
}

func TestCalculateNextCoordinatesMassScaling(t *testing.T) {
	g := &Snapshot{
		Nodes: []Node{
			{ID: "light", Position: Point{0, 0}, Mass: 1},
			{ID: "heavy", Position: Point{400, 0}, Mass: 4},
		},
		Edges: []Edge{{From: "light", To: "heavy"}},
	}
	sim := NewSimulation(DefaultParams(), NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.01, nil)

	light := dist(next["light"], g.Nodes[0].Position)
	heavy := dist(next["heavy"], g.Nodes[1].Position)
	if math.Abs(light-4*heavy) > 1e-9 {
		t.Errorf("light moved %v, heavy moved %v; expected a 4:1 ratio", light, heavy)
	}
}

func TestCalculateNextCoordinatesDeterministic(t *testing.T) {
	points := map[NodeID]Point{"a": {1, 1}, "b": {1, 1}, "c": {1, 1}, "d": {40, -3}}
	order := []NodeID{"a", "b", "c", "d"}
	g := snapshot(points, order, Edge{From: "a", To: "b"}, Edge{From: "c", To: "d"})

	run := func() map[NodeID]Point {
		sim := NewSimulation(DefaultParams(), NewRandom(99))
		var out map[NodeID]Point
		for i := 0; i < 5; i++ {
			out = sim.CalculateNextCoordinates(g, 0.016, nil)
		}
		return out
	}
	first, second := run(), run()
	for _, id := range order {
		if first[id] != second[id] {
			t.Errorf("node %s: %+v vs %+v", id, first[id], second[id])
		}
	}
}

func TestCalculateNextCoordinatesHoldsNonFinite(t *testing.T) {
	points := map[NodeID]Point{"a": {-1e308, 0}, "b": {1e308, 0}}
	g := snapshot(points, []NodeID{"a", "b"}, Edge{From: "a", To: "b"})

	sim := NewSimulation(DefaultParams(), NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.02, nil)
	for id, p := range next {
		if !p.IsFinite() {
			t.Fatalf("node %s has non-finite position %+v", id, p)
		}
		if p != points[id] {
			t.Errorf("node %s should be held at %+v, got %+v", id, points[id], p)
		}
	}
	if sim.LastStats().NonFinite != 2 {
		t.Errorf("expected 2 non-finite updates, got %d", sim.LastStats().NonFinite)
	}
}

func TestCalculateNextCoordinatesIgnoresDanglingEdges(t *testing.T) {
	points := map[NodeID]Point{"a": {0, 0}}
	g := snapshot(points, []NodeID{"a"}, Edge{From: "a", To: "ghost"}, Edge{From: "a", To: "a"})

	sim := NewSimulation(DefaultParams(), NewRandom(1))
	next := sim.CalculateNextCoordinates(g, 0.02, nil)
	if next["a"] != points["a"] {
		t.Errorf("lone node should not move, got %+v", next["a"])
	}
	if sim.LastStats().Edges != 0 {
		t.Errorf("dangling and self edges should be skipped, counted %d", sim.LastStats().Edges)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	bad := []func(*Params){
		func(p *Params) { p.NodeMass = 0 },
		func(p *Params) { p.MaxForce = -1 },
		func(p *Params) { p.EdgeStiffness = -0.1 },
		func(p *Params) { p.EdgeEquilibriumLength = -1 },
		func(p *Params) { p.EffectiveDistance = -1 },
		func(p *Params) { p.MinRegionSize = 0 },
		func(p *Params) { p.NodeMass = math.NaN() },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("case %d: expected ErrInvalidParams, got %v", i, err)
		}
	}
}
