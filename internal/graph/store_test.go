package graph

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onnwee/forcegraph/internal/layout"
)

func pt(x, y float64) *layout.Point { return &layout.Point{X: x, Y: y} }

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	for _, id := range []layout.NodeID{"a", "b", "c"} {
		_, err := s.AddNode(NodeSpec{ID: id})
		require.NoError(t, err)
	}
	require.NoError(t, s.AddEdge("a", "b"))
	require.NoError(t, s.AddEdge("b", "c"))
	return s
}

func TestAddNode(t *testing.T) {
	s := NewStore()
	n, err := s.AddNode(NodeSpec{ID: "x", Position: pt(3, 4), Mass: 2})
	require.NoError(t, err)
	assert.Equal(t, layout.Node{ID: "x", Position: layout.Point{X: 3, Y: 4}, Mass: 2}, n)

	_, err = s.AddNode(NodeSpec{ID: "x"})
	assert.ErrorIs(t, err, ErrNodeExists)

	_, err = s.AddNode(NodeSpec{ID: "bad", Position: pt(math.NaN(), 0)})
	assert.ErrorIs(t, err, ErrInvalidPoint)

	generated, err := s.AddNode(NodeSpec{})
	require.NoError(t, err)
	assert.Len(t, string(generated.ID), 36)
}

func TestAddNodePlacesOnSpiral(t *testing.T) {
	s := NewStore()
	seen := map[layout.Point]bool{}
	for i := 0; i < 50; i++ {
		n, err := s.AddNode(NodeSpec{})
		require.NoError(t, err)
		assert.False(t, seen[n.Position], "placement %d repeats a position", i)
		seen[n.Position] = true
	}

	other := NewStore()
	first, err := other.AddNode(NodeSpec{ID: "q"})
	require.NoError(t, err)
	assert.Equal(t, spiralPoint(0), first.Position, "placement must be reproducible")
}

func TestAddEdgeErrors(t *testing.T) {
	s := seeded(t)
	assert.ErrorIs(t, s.AddEdge("a", "a"), ErrSelfLoop)
	assert.ErrorIs(t, s.AddEdge("a", "zz"), ErrEdgeEndpoint)
	assert.ErrorIs(t, s.AddEdge("a", "b"), ErrEdgeExists)
	assert.NoError(t, s.AddEdge("b", "a"), "reverse direction is a distinct edge")
}

func TestRemoveNodeDropsIncidentEdges(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.BeginDrag("b", layout.Point{}))
	require.NoError(t, s.RemoveNode("b"))

	snap := s.Snapshot()
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, layout.NodeID("a"), snap.Nodes[0].ID)
	assert.Equal(t, layout.NodeID("c"), snap.Nodes[1].ID)
	assert.Empty(t, snap.Edges)
	assert.Empty(t, s.DraggingNodeIDs())

	assert.ErrorIs(t, s.RemoveNode("b"), ErrNodeNotFound)
	_, err := s.Node("c")
	assert.NoError(t, err, "index must follow the shifted slice")

	// the removed pair can be re-added
	_, err = s.AddNode(NodeSpec{ID: "b"})
	require.NoError(t, err)
	assert.NoError(t, s.AddEdge("a", "b"))
}

func TestRemoveEdge(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.RemoveEdge("a", "b"))
	assert.ErrorIs(t, s.RemoveEdge("a", "b"), ErrEdgeNotFound)
	assert.Equal(t, []layout.Edge{{From: "b", To: "c"}}, s.Snapshot().Edges)
}

func TestDragLifecycle(t *testing.T) {
	s := seeded(t)
	assert.ErrorIs(t, s.MoveDrag("a", layout.Point{}), ErrNotDragging)
	assert.ErrorIs(t, s.EndDrag("a"), ErrNotDragging)
	assert.ErrorIs(t, s.BeginDrag("zz", layout.Point{}), ErrNodeNotFound)
	assert.ErrorIs(t, s.BeginDrag("a", layout.Point{X: math.Inf(1)}), ErrInvalidPoint)

	require.NoError(t, s.BeginDrag("a", layout.Point{X: 1, Y: 1}))
	require.NoError(t, s.MoveDrag("a", layout.Point{X: 2, Y: 2}))
	assert.True(t, s.DraggingNodeIDs().Has("a"))

	s.UpdateNodePositions(map[layout.NodeID]layout.Point{"a": {X: 9, Y: 9}})
	n, err := s.Node("a")
	require.NoError(t, err)
	assert.Equal(t, layout.Point{X: 2, Y: 2}, n.Position, "layout must not move a dragged node")

	require.NoError(t, s.EndDrag("a"))
	s.UpdateNodePositions(map[layout.NodeID]layout.Point{"a": {X: 9, Y: 9}})
	n, _ = s.Node("a")
	assert.Equal(t, layout.Point{X: 9, Y: 9}, n.Position)
}

func TestUpdateNodePositionsIgnoresUnknownAndNonFinite(t *testing.T) {
	s := seeded(t)
	before := s.Version()
	s.UpdateNodePositions(map[layout.NodeID]layout.Point{
		"ghost": {X: 1},
		"c":     {X: math.NaN()},
	})
	assert.Equal(t, before, s.Version())

	s.UpdateNodePositions(map[layout.NodeID]layout.Point{"c": {X: 5, Y: 6}})
	assert.Greater(t, s.Version(), before)
	assert.Equal(t, layout.Point{X: 5, Y: 6}, s.Positions()["c"])
}

func TestSnapshotIsACopy(t *testing.T) {
	s := seeded(t)
	snap := s.Snapshot()
	snap.Nodes[0].Position = layout.Point{X: 1e6}
	snap.Edges[0].To = "zz"

	again := s.Snapshot()
	assert.NotEqual(t, layout.Point{X: 1e6}, again.Nodes[0].Position)
	assert.Equal(t, layout.NodeID("b"), again.Edges[0].To)
}

func TestStatsAndCounts(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.BeginDrag("c", layout.Point{}))
	st := s.Stats()
	assert.Equal(t, 3, st.Nodes)
	assert.Equal(t, 2, st.Edges)
	assert.Equal(t, 1, st.Dragging)
	assert.Equal(t, s.Version(), st.Version)

	n, e, d := s.Counts()
	assert.Equal(t, []int{3, 2, 1}, []int{n, e, d})
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := seeded(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.UpdateNodePositions(map[layout.NodeID]layout.Point{"a": {X: float64(i), Y: float64(j)}})
				_ = s.Snapshot()
				_ = s.DraggingNodeIDs()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 3, s.Stats().Nodes)
}
