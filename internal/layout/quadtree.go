package layout

import "math"

const (
	noRegion = -1
	// maxTreeDepth bounds subdivision even when MinRegionSize is tiny
	// relative to the extent of the graph.
	maxTreeDepth = 64
)

// Box is a square region given by its center and half side length.
type Box struct {
	CenterX, CenterY float64
	Radius           float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return math.Abs(p.X-b.CenterX) <= b.Radius && math.Abs(p.Y-b.CenterY) <= b.Radius
}

// Size is the side length of the box.
func (b Box) Size() float64 { return b.Radius * 2 }

// quadrant numbers the four sub-boxes: bit 0 set for east, bit 1 for south.
func (b Box) quadrant(p Point) int {
	q := 0
	if p.X >= b.CenterX {
		q |= 1
	}
	if p.Y >= b.CenterY {
		q |= 2
	}
	return q
}

func (b Box) child(q int) Box {
	r := b.Radius / 2
	c := Box{CenterX: b.CenterX - r, CenterY: b.CenterY - r, Radius: r}
	if q&1 != 0 {
		c.CenterX = b.CenterX + r
	}
	if q&2 != 0 {
		c.CenterY = b.CenterY + r
	}
	return c
}

// boundingBox returns the square covering all bodies. Radius is half the
// larger of width and height.
func boundingBox(bodies []Body) Box {
	if len(bodies) == 0 {
		return Box{}
	}
	minX, maxX := bodies[0].Position.X, bodies[0].Position.X
	minY, maxY := bodies[0].Position.Y, bodies[0].Position.Y
	for _, b := range bodies[1:] {
		minX = math.Min(minX, b.Position.X)
		maxX = math.Max(maxX, b.Position.X)
		minY = math.Min(minY, b.Position.Y)
		maxY = math.Max(maxY, b.Position.Y)
	}
	return Box{
		CenterX: (minX + maxX) / 2,
		CenterY: (minY + maxY) / 2,
		Radius:  math.Max(maxX-minX, maxY-minY) / 2,
	}
}

// Body is a point mass placed into the quad-tree.
type Body struct {
	ID       NodeID
	Position Point
	Mass     float64
	Charge   float64
}

// Region is one quad-tree node. Parent and Children are handles into the
// owning tree's arena; noRegion marks an absent link.
type Region struct {
	Box         Box
	TotalMass   float64
	TotalCharge float64
	MassCenter  Point
	Count       int // bodies beneath this region
	Parent      int
	Children    [4]int
	Depth       int

	members []int // body indexes, leaves only
}

// IsLeaf reports whether the region has no children.
func (r *Region) IsLeaf() bool {
	return r.Children == [4]int{noRegion, noRegion, noRegion, noRegion}
}

// QuadTree is a Barnes-Hut area partition stored as an arena of regions.
// Region 0 is the root. It is built once per tick and then discarded.
type QuadTree struct {
	regions []Region
	bodies  []Body
	leafOf  []int
	depth   int
	stack   []int
}

// BuildQuadTree partitions bodies into a quad-tree. Subdivision stops when a
// region holds at most one distinct position, its side is no longer than
// minRegionSize, or maxTreeDepth is reached.
func BuildQuadTree(bodies []Body, minRegionSize float64) *QuadTree {
	t := &QuadTree{
		regions: make([]Region, 0, 2*len(bodies)+1),
		bodies:  bodies,
		leafOf:  make([]int, len(bodies)),
	}
	t.regions = append(t.regions, newRegion(boundingBox(bodies), noRegion, 0))

	members := make([]int, len(bodies))
	for i := range members {
		members[i] = i
	}
	t.split(0, members, minRegionSize)
	t.aggregate()
	return t
}

func newRegion(box Box, parent, depth int) Region {
	return Region{
		Box:      box,
		Parent:   parent,
		Children: [4]int{noRegion, noRegion, noRegion, noRegion},
		Depth:    depth,
	}
}

func (t *QuadTree) split(idx int, members []int, minRegionSize float64) {
	box := t.regions[idx].Box
	depth := t.regions[idx].Depth
	if depth > t.depth {
		t.depth = depth
	}
	if len(members) <= 1 || t.coincident(members) || box.Size() <= minRegionSize || depth >= maxTreeDepth {
		t.regions[idx].members = members
		for _, m := range members {
			t.leafOf[m] = idx
		}
		return
	}

	var buckets [4][]int
	for _, m := range members {
		q := box.quadrant(t.bodies[m].Position)
		buckets[q] = append(buckets[q], m)
	}
	for q, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		child := len(t.regions)
		t.regions = append(t.regions, newRegion(box.child(q), idx, depth+1))
		t.regions[idx].Children[q] = child
		t.split(child, bucket, minRegionSize)
	}
}

func (t *QuadTree) coincident(members []int) bool {
	first := t.bodies[members[0]].Position
	for _, m := range members[1:] {
		if t.bodies[m].Position != first {
			return false
		}
	}
	return true
}

// aggregate fills mass, charge and mass center bottom-up. Children always
// have larger handles than their parent, so a reverse sweep visits every
// region after all of its descendants.
func (t *QuadTree) aggregate() {
	type sums struct {
		mass, charge float64
		wx, wy       float64 // mass-weighted position
		sx, sy       float64 // plain position, for zero-mass regions
		n            int
	}
	acc := make([]sums, len(t.regions))
	for idx := range t.regions {
		for _, m := range t.regions[idx].members {
			b := t.bodies[m]
			a := &acc[idx]
			a.mass += b.Mass
			a.charge += b.Charge
			a.wx += b.Position.X * b.Mass
			a.wy += b.Position.Y * b.Mass
			a.sx += b.Position.X
			a.sy += b.Position.Y
			a.n++
		}
	}

	for idx := len(t.regions) - 1; idx >= 0; idx-- {
		a := acc[idx]
		r := &t.regions[idx]
		r.TotalMass = a.mass
		r.TotalCharge = a.charge
		r.Count = a.n
		switch {
		case a.mass > 0:
			r.MassCenter = Point{X: a.wx / a.mass, Y: a.wy / a.mass}
		case a.n > 0:
			r.MassCenter = Point{X: a.sx / float64(a.n), Y: a.sy / float64(a.n)}
		default:
			r.MassCenter = Point{X: r.Box.CenterX, Y: r.Box.CenterY}
		}
		if r.Parent == noRegion {
			continue
		}
		p := &acc[r.Parent]
		p.mass += a.mass
		p.charge += a.charge
		p.wx += a.wx
		p.wy += a.wy
		p.sx += a.sx
		p.sy += a.sy
		p.n += a.n
	}
}

// Root returns the root region.
func (t *QuadTree) Root() Region { return t.regions[0] }

// Region returns the region with the given handle.
func (t *QuadTree) Region(handle int) Region { return t.regions[handle] }

// Len is the number of regions in the tree.
func (t *QuadTree) Len() int { return len(t.regions) }

// Depth is the deepest level reached, the root being 0.
func (t *QuadTree) Depth() int { return t.depth }

// LeafOf returns the handle of the leaf holding body i.
func (t *QuadTree) LeafOf(i int) int { return t.leafOf[i] }

// NodeIDs lists the ids of all bodies beneath the region, in tree order.
func (t *QuadTree) NodeIDs(handle int) []NodeID {
	var ids []NodeID
	var walk func(int)
	walk = func(h int) {
		r := &t.regions[h]
		for _, m := range r.members {
			ids = append(ids, t.bodies[m].ID)
		}
		for _, c := range r.Children {
			if c != noRegion {
				walk(c)
			}
		}
	}
	walk(handle)
	return ids
}

// Ancestors returns the handles from the leaf holding body i up to the root.
func (t *QuadTree) Ancestors(i int) []int {
	var path []int
	for h := t.leafOf[i]; h != noRegion; h = t.regions[h].Parent {
		path = append(path, h)
	}
	return path
}
