package layout

// SpringForce is the signed Hooke's law magnitude: positive when the spring
// is stretched beyond its equilibrium length, negative when compressed.
func SpringForce(stiffness, equilibriumLength, distance float64) float64 {
	return stiffness * (distance - equilibriumLength)
}

// ForceAlong returns the spring forces on an edge's endpoints. They are
// equal and opposite: a stretched edge pulls both ends together, a
// compressed one pushes them apart. Coincident endpoints are separated along
// a random direction.
func ForceAlong(gen *DistanceVectorGenerator, from, to Point, p Params) (onFrom, onTo Vector) {
	dv := gen.Create(from, to)
	f := SpringForce(p.EdgeStiffness, p.EdgeEquilibriumLength, dv.D)
	onFrom = dv.Direction().Scale(f)
	return onFrom, onFrom.Scale(-1)
}
