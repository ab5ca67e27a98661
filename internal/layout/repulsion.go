package layout

import "math"

// RepulsiveForce returns the inverse-square repulsion magnitude between two
// charges, clamped to [-maxForce, maxForce]. A zero distance yields
// maxForce regardless of the charges.
func RepulsiveForce(coefficient, charge1, charge2, distance, maxForce float64) float64 {
	if distance == 0 {
		return maxForce
	}
	f := coefficient * charge1 * charge2 / (distance * distance)
	switch {
	case math.IsNaN(f), f > maxForce:
		return maxForce
	case f < -maxForce:
		return -maxForce
	}
	return f
}

// ForceOn sums the repulsion acting on body i by walking the tree depth
// first. Leaves are evaluated member by member so a body never interacts
// with itself. An internal region not containing the body is collapsed into
// its mass center when its size/distance ratio is below
// p.EffectiveDistance; otherwise its children are visited.
func (t *QuadTree) ForceOn(i int, gen *DistanceVectorGenerator, p Params) Vector {
	self := t.bodies[i]
	var total Vector

	stack := append(t.stack[:0], 0)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r := &t.regions[h]
		if r.Count == 0 {
			continue
		}

		if r.IsLeaf() {
			for _, m := range r.members {
				if m == i {
					continue
				}
				other := t.bodies[m]
				total = total.Add(repulsion(gen, other.Position, other.Charge, self, p))
			}
			continue
		}

		if !r.Box.Contains(self.Position) {
			d := math.Hypot(self.Position.X-r.MassCenter.X, self.Position.Y-r.MassCenter.Y)
			if d > 0 && r.Box.Size()/d < p.EffectiveDistance {
				total = total.Add(repulsion(gen, r.MassCenter, r.TotalCharge, self, p))
				continue
			}
		}

		for q := 3; q >= 0; q-- {
			if c := r.Children[q]; c != noRegion {
				stack = append(stack, c)
			}
		}
	}
	t.stack = stack
	return total
}

// repulsion pushes self directly away from a source point.
func repulsion(gen *DistanceVectorGenerator, source Point, charge float64, self Body, p Params) Vector {
	dv := gen.Create(source, self.Position)
	f := RepulsiveForce(p.RepulsionCoefficient, charge, self.Charge, dv.D, p.MaxForce)
	return dv.Direction().Scale(f)
}
