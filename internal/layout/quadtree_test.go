package layout

import (
	"math"
	"testing"
)

func unitBodies(points ...Point) []Body {
	bodies := make([]Body, len(points))
	for i, p := range points {
		bodies[i] = Body{ID: NodeID(string(rune('a' + i))), Position: p, Mass: 1, Charge: 1}
	}
	return bodies
}

func TestBuildQuadTreeEmpty(t *testing.T) {
	tree := BuildQuadTree(nil, 1e-3)
	root := tree.Root()
	if tree.Len() != 1 {
		t.Fatalf("expected a lone root region, got %d regions", tree.Len())
	}
	if root.Box != (Box{}) {
		t.Errorf("expected zero box at origin, got %+v", root.Box)
	}
	if root.Count != 0 || root.TotalMass != 0 || root.TotalCharge != 0 {
		t.Errorf("expected empty aggregates, got %+v", root)
	}
}

func TestBuildQuadTreeSingle(t *testing.T) {
	tree := BuildQuadTree(unitBodies(Point{5, 7}), 1e-3)
	root := tree.Root()
	if !root.IsLeaf() {
		t.Fatal("single body tree should be a leaf")
	}
	if root.Box != (Box{CenterX: 5, CenterY: 7}) {
		t.Errorf("expected zero-radius box at the body, got %+v", root.Box)
	}
	if root.MassCenter != (Point{5, 7}) {
		t.Errorf("mass center = %+v, want (5,7)", root.MassCenter)
	}
}

func TestBuildQuadTreeQuadrants(t *testing.T) {
	tree := BuildQuadTree(unitBodies(
		Point{10, 10}, // north-west
		Point{90, 10}, // north-east
		Point{10, 90}, // south-west
		Point{90, 90}, // south-east
	), 1e-3)

	root := tree.Root()
	if root.IsLeaf() {
		t.Fatal("root should be subdivided")
	}
	if root.Box != (Box{CenterX: 50, CenterY: 50, Radius: 40}) {
		t.Errorf("unexpected root box %+v", root.Box)
	}
	if tree.Len() != 5 {
		t.Errorf("expected root plus 4 leaves, got %d regions", tree.Len())
	}
	for q := 0; q < 4; q++ {
		h := root.Children[q]
		if h == noRegion {
			t.Fatalf("quadrant %d missing", q)
		}
		if leaf := tree.LeafOf(q); leaf != h {
			t.Errorf("body %d in region %d, want %d", q, leaf, h)
		}
	}
	if root.TotalMass != 4 || root.MassCenter != (Point{50, 50}) {
		t.Errorf("root aggregates mass=%v center=%+v", root.TotalMass, root.MassCenter)
	}
}

func TestBuildQuadTreeCoincidentStayTogether(t *testing.T) {
	tree := BuildQuadTree(unitBodies(Point{5, 5}, Point{5, 5}, Point{5, 5}), 1e-3)
	if tree.Len() != 1 {
		t.Fatalf("coincident bodies should share one leaf, got %d regions", tree.Len())
	}
	if got := len(tree.NodeIDs(0)); got != 3 {
		t.Errorf("expected 3 ids in leaf, got %d", got)
	}
}

func TestBuildQuadTreeMinRegionSize(t *testing.T) {
	tree := BuildQuadTree(unitBodies(Point{0, 0}, Point{1e-5, 0}), 1e-3)
	if tree.Len() != 1 {
		t.Errorf("region below min size should not split, got %d regions", tree.Len())
	}
	if tree.Root().Count != 2 {
		t.Errorf("expected both bodies in the root leaf, got %d", tree.Root().Count)
	}
}

func TestBuildQuadTreeWeightedCenter(t *testing.T) {
	bodies := []Body{
		{ID: "light", Position: Point{0, 0}, Mass: 1, Charge: 2},
		{ID: "heavy", Position: Point{10, 0}, Mass: 3, Charge: 5},
	}
	root := BuildQuadTree(bodies, 1e-3).Root()
	if root.TotalMass != 4 || root.TotalCharge != 7 {
		t.Errorf("totals mass=%v charge=%v, want 4 and 7", root.TotalMass, root.TotalCharge)
	}
	if math.Abs(root.MassCenter.X-7.5) > 1e-12 || root.MassCenter.Y != 0 {
		t.Errorf("mass center = %+v, want (7.5,0)", root.MassCenter)
	}
}

func TestBuildQuadTreeZeroMassCenter(t *testing.T) {
	bodies := []Body{
		{ID: "a", Position: Point{0, 0}},
		{ID: "b", Position: Point{4, 2}},
	}
	root := BuildQuadTree(bodies, 1e-3).Root()
	if !root.MassCenter.IsFinite() {
		t.Fatalf("zero-mass region center is not finite: %+v", root.MassCenter)
	}
	if root.MassCenter != (Point{2, 1}) {
		t.Errorf("zero-mass center = %+v, want geometric mean (2,1)", root.MassCenter)
	}
}

func TestQuadTreeStructure(t *testing.T) {
	var points []Point
	for i := 0; i < 60; i++ {
		points = append(points, Point{X: float64(i%8) * 13.5, Y: float64(i/8) * 7.25})
	}
	bodies := unitBodies(points...)
	tree := BuildQuadTree(bodies, 1e-3)

	var sumCount int
	for h := 0; h < tree.Len(); h++ {
		r := tree.Region(h)
		if h == 0 {
			if r.Parent != noRegion {
				t.Errorf("root has parent %d", r.Parent)
			}
			continue
		}
		parent := tree.Region(r.Parent)
		found := false
		for _, c := range parent.Children {
			if c == h {
				found = true
			}
		}
		if !found {
			t.Errorf("region %d not listed among its parent's children", h)
		}
		if r.Depth != parent.Depth+1 {
			t.Errorf("region %d depth %d, parent depth %d", h, r.Depth, parent.Depth)
		}
		if r.IsLeaf() {
			sumCount += r.Count
		}
	}
	if sumCount != len(bodies) {
		t.Errorf("leaves hold %d bodies, want %d", sumCount, len(bodies))
	}

	for i, b := range bodies {
		leaf := tree.Region(tree.LeafOf(i))
		if !leaf.Box.Contains(b.Position) {
			t.Errorf("body %d at %+v outside its leaf box %+v", i, b.Position, leaf.Box)
		}
		path := tree.Ancestors(i)
		if path[len(path)-1] != 0 {
			t.Errorf("ancestor path of body %d does not end at the root", i)
		}
	}
}
