package layout

import "math"

// NodeID identifies a node within one graph snapshot.
type NodeID string

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Vector is a force or displacement.
type Vector struct {
	X, Y float64
}

func (v Vector) Add(o Vector) Vector { return Vector{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vector) Scale(s float64) Vector { return Vector{X: v.X * s, Y: v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vector) Len() float64 { return math.Hypot(v.X, v.Y) }

// Node is the tick-scoped simulation view of a graph node.
// A zero Mass or Charge means the simulation default applies.
type Node struct {
	ID       NodeID
	Position Point
	Mass     float64
	Charge   float64
}

// Edge connects two nodes. Equilibrium length and stiffness are
// simulation-wide.
type Edge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// Snapshot is the graph state a single tick is computed from.
// Node order determines the order random draws are consumed in.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}
