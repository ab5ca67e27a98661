package layout

import "math"

// DistanceVector is the unit direction from a source to a target point
// together with the distance between them.
type DistanceVector struct {
	EX, EY float64
	D, D2  float64
}

// Direction returns the unit direction as a Vector.
func (dv DistanceVector) Direction() Vector {
	return Vector{X: dv.EX, Y: dv.EY}
}

// DistanceVectorGenerator builds distance vectors, drawing a random
// direction when both points coincide.
type DistanceVectorGenerator struct {
	rnd Random
}

func NewDistanceVectorGenerator(rnd Random) *DistanceVectorGenerator {
	return &DistanceVectorGenerator{rnd: rnd}
}

// Create returns the distance vector from source to target. Coincident
// points get a uniformly sampled direction on [0, 2π) with D = D2 = 0.
func (g *DistanceVectorGenerator) Create(source, target Point) DistanceVector {
	dx := target.X - source.X
	dy := target.Y - source.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		angle := g.rnd.Float64() * 2 * math.Pi
		return DistanceVector{EX: math.Cos(angle), EY: math.Sin(angle)}
	}
	d := math.Sqrt(d2)
	return DistanceVector{EX: dx / d, EY: dy / d, D: d, D2: d2}
}
