package graph

import (
	"math"

	"github.com/onnwee/forcegraph/internal/layout"
)

// placementSpacing is the distance scale of the initial spiral.
const placementSpacing = 20.0

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// spiralPoint returns the k-th point of a sunflower spiral around the
// origin. Consecutive points never coincide, so new nodes start apart.
func spiralPoint(k int) layout.Point {
	r := placementSpacing * math.Sqrt(float64(k)+0.5)
	a := float64(k) * goldenAngle
	return layout.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
}
