package layout

import (
	"math"
	"testing"
)

func TestDistanceVectorCreate(t *testing.T) {
	gen := NewDistanceVectorGenerator(NewRandom(1))
	dv := gen.Create(Point{0, 0}, Point{10, 20})

	want := math.Sqrt(500)
	if math.Abs(dv.D-want) > 1e-12 {
		t.Errorf("D = %v, want %v", dv.D, want)
	}
	if dv.D2 != 500 {
		t.Errorf("D2 = %v, want 500", dv.D2)
	}
	if math.Abs(dv.EX-10/want) > 1e-12 || math.Abs(dv.EY-20/want) > 1e-12 {
		t.Errorf("direction = (%v,%v), want (%v,%v)", dv.EX, dv.EY, 10/want, 20/want)
	}
}

func TestDistanceVectorCoincident(t *testing.T) {
	gen := NewDistanceVectorGenerator(NewRandom(7))
	for i := 0; i < 50; i++ {
		dv := gen.Create(Point{3, 4}, Point{3, 4})
		if dv.D != 0 || dv.D2 != 0 {
			t.Fatalf("coincident points should have zero distance, got D=%v D2=%v", dv.D, dv.D2)
		}
		if l := dv.EX*dv.EX + dv.EY*dv.EY; math.Abs(l-1) > 1e-12 {
			t.Fatalf("fallback direction is not a unit vector: |e|^2 = %v", l)
		}
	}
}

func TestDistanceVectorDeterministic(t *testing.T) {
	a := NewDistanceVectorGenerator(NewRandom(42))
	b := NewDistanceVectorGenerator(NewRandom(42))
	for i := 0; i < 100; i++ {
		da := a.Create(Point{}, Point{})
		db := b.Create(Point{}, Point{})
		if da != db {
			t.Fatalf("draw %d differs: %+v vs %+v", i, da, db)
		}
	}
}

func TestDistanceVectorSeedsDiffer(t *testing.T) {
	a := NewDistanceVectorGenerator(NewRandom(1)).Create(Point{}, Point{})
	b := NewDistanceVectorGenerator(NewRandom(2)).Create(Point{}, Point{})
	if a == b {
		t.Error("different seeds produced the same first direction")
	}
}
