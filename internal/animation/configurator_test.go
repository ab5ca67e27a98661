package animation

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/logger"
)

type fakeCanvas struct {
	mu       sync.Mutex
	snap     layout.Snapshot
	dragging layout.NodeSet
	updates  []map[layout.NodeID]layout.Point
	panics   int // remaining Snapshot calls that panic
}

func newFakeCanvas(edges []layout.Edge, nodes ...layout.Node) *fakeCanvas {
	return &fakeCanvas{snap: layout.Snapshot{Nodes: nodes, Edges: edges}}
}

func (f *fakeCanvas) Snapshot() *layout.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics > 0 {
		f.panics--
		panic("snapshot failed")
	}
	cp := layout.Snapshot{
		Nodes: append([]layout.Node(nil), f.snap.Nodes...),
		Edges: append([]layout.Edge(nil), f.snap.Edges...),
	}
	return &cp
}

func (f *fakeCanvas) DraggingNodeIDs() layout.NodeSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dragging
}

func (f *fakeCanvas) UpdateNodePositions(positions map[layout.NodeID]layout.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, positions)
	for i, n := range f.snap.Nodes {
		if p, ok := positions[n.ID]; ok {
			f.snap.Nodes[i].Position = p
		}
	}
}

func (f *fakeCanvas) position(id layout.NodeID) layout.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.snap.Nodes {
		if n.ID == id {
			return n.Position
		}
	}
	return layout.Point{}
}

func triangle() *fakeCanvas {
	return newFakeCanvas(
		[]layout.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
		layout.Node{ID: "a", Position: layout.Point{X: 0, Y: 0}},
		layout.Node{ID: "b", Position: layout.Point{X: 300, Y: 0}},
		layout.Node{ID: "c", Position: layout.Point{X: 0, Y: 300}},
	)
}

func quietOptions() Options {
	return Options{Seed: 7, Logger: logger.New(io.Discard, "error", false)}
}

func runFrames(m *ManualScheduler, n int) {
	for i := 0; i < n; i++ {
		m.Advance(16)
	}
}

func TestConfigureRejectsBadInput(t *testing.T) {
	m := NewManualScheduler()
	if _, err := Configure(nil, m, quietOptions()); !errors.Is(err, ErrNoCanvas) {
		t.Errorf("expected ErrNoCanvas, got %v", err)
	}
	if _, err := Configure(triangle(), nil, quietOptions()); err == nil {
		t.Error("expected error for nil scheduler")
	}

	opts := quietOptions()
	opts.Params = layout.DefaultParams()
	opts.Params.MaxForce = 0
	if _, err := Configure(triangle(), m, opts); !errors.Is(err, layout.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
	if m.Pending() != 0 {
		t.Error("failed Configure must not request frames")
	}
}

func TestConfiguratorMovesNodes(t *testing.T) {
	canvas := triangle()
	m := NewManualScheduler()
	c, err := Configure(canvas, m, quietOptions())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer c.Stop()

	runFrames(m, 6)
	if c.Ticks() != 5 {
		t.Fatalf("expected 5 ticks after 6 frames, got %d", c.Ticks())
	}
	if got := canvas.position("b"); got == (layout.Point{X: 300, Y: 0}) {
		t.Error("expected b to move")
	}
	if c.Params() != layout.DefaultParams() {
		t.Errorf("expected default params, got %+v", c.Params())
	}
}

func TestConfiguratorNeverWritesStaticNodes(t *testing.T) {
	canvas := triangle()
	m := NewManualScheduler()
	opts := quietOptions()
	opts.StaticNodeIDs = []layout.NodeID{"a"}
	c, err := Configure(canvas, m, opts)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer c.Stop()

	runFrames(m, 10)
	if len(canvas.updates) == 0 {
		t.Fatal("expected updates")
	}
	for i, u := range canvas.updates {
		if _, ok := u["a"]; ok {
			t.Fatalf("update %d wrote static node a", i)
		}
	}
	if canvas.position("a") != (layout.Point{}) {
		t.Errorf("static node moved to %+v", canvas.position("a"))
	}
	if ids := c.StaticNodeIDs(); len(ids) != 1 || ids[0] != "a" {
		t.Errorf("StaticNodeIDs() = %v", ids)
	}
}

func TestConfiguratorTreatsDraggingAsStatic(t *testing.T) {
	canvas := triangle()
	canvas.dragging = layout.NewNodeSet("b")
	m := NewManualScheduler()
	c, err := Configure(canvas, m, quietOptions())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer c.Stop()

	runFrames(m, 4)
	for _, u := range canvas.updates {
		if _, ok := u["b"]; ok {
			t.Fatal("dragging node b was written")
		}
		if _, ok := u["a"]; !ok {
			t.Fatal("free node a missing from update")
		}
	}
}

func TestConfiguratorOnTick(t *testing.T) {
	canvas := triangle()
	m := NewManualScheduler()
	opts := quietOptions()
	var results []TickResult
	opts.OnTick = func(r TickResult) { results = append(results, r) }
	c, err := Configure(canvas, m, opts)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer c.Stop()

	runFrames(m, 4)
	if len(results) != 3 {
		t.Fatalf("expected 3 tick results, got %d", len(results))
	}
	for i, r := range results {
		if r.Tick != uint64(i+1) {
			t.Errorf("result %d has tick %d", i, r.Tick)
		}
		if r.DtSec != 0.016 {
			t.Errorf("result %d has dt %v", i, r.DtSec)
		}
		if len(r.Positions) != 3 || r.Stats.Nodes != 3 {
			t.Errorf("result %d: positions=%d nodes=%d", i, len(r.Positions), r.Stats.Nodes)
		}
	}
}

func TestConfiguratorRecoversFromPanics(t *testing.T) {
	canvas := triangle()
	canvas.panics = 1
	m := NewManualScheduler()
	c, err := Configure(canvas, m, quietOptions())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer c.Stop()

	runFrames(m, 4)
	if c.Panics() != 1 {
		t.Fatalf("expected 1 recovered panic, got %d", c.Panics())
	}
	if c.Ticks() != 3 {
		t.Fatalf("expected 3 ticks, got %d", c.Ticks())
	}
	if len(canvas.updates) != 2 {
		t.Fatalf("expected ticks after the panic to update, got %d updates", len(canvas.updates))
	}
}

func TestConfiguratorStop(t *testing.T) {
	canvas := triangle()
	m := NewManualScheduler()
	c, err := Configure(canvas, m, quietOptions())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	runFrames(m, 3)
	c.Stop()
	c.Stop()
	ticks := c.Ticks()

	runFrames(m, 3)
	if c.Ticks() != ticks {
		t.Fatalf("ticks advanced after Stop: %d -> %d", ticks, c.Ticks())
	}
}

func TestConfiguratorDeterministic(t *testing.T) {
	run := func() layout.Point {
		canvas := newFakeCanvas(nil,
			layout.Node{ID: "a"},
			layout.Node{ID: "b"},
			layout.Node{ID: "c", Position: layout.Point{X: 1, Y: 1}},
		)
		m := NewManualScheduler()
		c, err := Configure(canvas, m, quietOptions())
		if err != nil {
			t.Fatalf("Configure: %v", err)
		}
		defer c.Stop()
		runFrames(m, 20)
		return canvas.position("b")
	}
	first, second := run(), run()
	if first != second {
		t.Fatalf("same seed produced %+v and %+v", first, second)
	}
}
