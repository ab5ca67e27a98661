package animation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/onnwee/forcegraph/internal/errorreporting"
	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/metrics"
	"github.com/onnwee/forcegraph/internal/tracing"
)

// Canvas is the graph being laid out. Snapshot is read at the start of a
// tick and UpdateNodePositions is called once at its end.
type Canvas interface {
	Snapshot() *layout.Snapshot
	// DraggingNodeIDs are nodes held by a user; they are treated as static
	// for the tick.
	DraggingNodeIDs() layout.NodeSet
	UpdateNodePositions(positions map[layout.NodeID]layout.Point)
}

// TickResult is passed to Options.OnTick after positions were written.
type TickResult struct {
	Tick      uint64
	DtSec     float64
	Positions map[layout.NodeID]layout.Point
	Stats     layout.TickStats
	Duration  time.Duration
}

// Options configures Configure. The zero value uses layout.DefaultParams,
// DefaultMaxTimeDeltaSec and seed 0.
type Options struct {
	Params          layout.Params
	MaxTimeDeltaSec float64
	Seed            uint64
	// Random overrides the source seeded from Seed.
	Random        layout.Random
	StaticNodeIDs []layout.NodeID
	OnTick        func(TickResult)
	Logger        *slog.Logger
}

var ErrNoCanvas = errors.New("animation: nil canvas")

// Configurator runs the simulation against a Canvas once per frame.
type Configurator struct {
	canvas Canvas
	sim    *layout.Simulation
	series *Series
	static layout.NodeSet
	onTick func(TickResult)
	log    *slog.Logger

	ticks  atomic.Uint64
	panics atomic.Uint64
}

// Configure validates opts and starts a frame series on scheduler that
// advances canvas every frame.
func Configure(canvas Canvas, scheduler FrameScheduler, opts Options) (*Configurator, error) {
	if canvas == nil {
		return nil, ErrNoCanvas
	}
	if scheduler == nil {
		return nil, errors.New("animation: nil scheduler")
	}
	params := opts.Params
	if params == (layout.Params{}) {
		params = layout.DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("configure layout: %w", err)
	}
	rnd := opts.Random
	if rnd == nil {
		rnd = layout.NewRandom(opts.Seed)
	}
	log := opts.Logger
	if log == nil {
		log = logger.WithComponent("animation")
	}

	c := &Configurator{
		canvas: canvas,
		sim:    layout.NewSimulation(params, rnd),
		static: layout.NewNodeSet(opts.StaticNodeIDs...),
		onTick: opts.OnTick,
		log:    log,
	}
	c.series = NewSeries(scheduler, opts.MaxTimeDeltaSec, c.tick)
	c.series.Start()

	log.Info("layout animation started",
		"static_nodes", len(c.static),
		"effective_distance", params.EffectiveDistance,
		"max_time_delta_sec", c.series.maxDelta)
	return c, nil
}

// Stop ends the animation. No tick starts after Stop returns.
func (c *Configurator) Stop() {
	if c.series.Stopped() {
		return
	}
	c.series.Stop()
	c.log.Info("layout animation stopped", "ticks", c.ticks.Load())
}

// Ticks is the number of simulation steps run so far.
func (c *Configurator) Ticks() uint64 { return c.ticks.Load() }

// Panics is the number of ticks aborted by a panic.
func (c *Configurator) Panics() uint64 { return c.panics.Load() }

// StaticNodeIDs returns the permanently pinned nodes.
func (c *Configurator) StaticNodeIDs() []layout.NodeID { return c.static.Sorted() }

// Params returns the simulation constants in use.
func (c *Configurator) Params() layout.Params { return c.sim.Params() }

func (c *Configurator) tick(dtSec float64) {
	n := c.ticks.Add(1)
	ctx := context.WithValue(context.Background(), logger.TickKey, n)
	defer func() {
		if r := recover(); r != nil {
			c.panics.Add(1)
			metrics.LayoutTickPanics.Inc()
			logger.FromContext(ctx).Error("layout tick panicked", "component", "animation", "panic", r)
			errorreporting.CapturePanic("animation", r, map[string]interface{}{"tick": n})
		}
	}()

	start := time.Now()
	g := c.canvas.Snapshot()
	nodes := 0
	if g != nil {
		nodes = len(g.Nodes)
	}
	_, span := tracing.StartTickSpan(ctx, n, nodes)
	defer span.End()

	static := c.static.Union(c.canvas.DraggingNodeIDs())
	next := c.sim.CalculateNextCoordinates(g, dtSec, static)
	c.canvas.UpdateNodePositions(next)

	stats := c.sim.LastStats()
	elapsed := time.Since(start)
	metrics.LayoutTicks.Inc()
	metrics.LayoutTickDuration.Observe(elapsed.Seconds())
	metrics.LayoutNodes.Set(float64(stats.Nodes))
	metrics.LayoutStaticNodes.Set(float64(stats.Static))
	metrics.LayoutQuadTreeRegions.Set(float64(stats.Regions))
	metrics.LayoutQuadTreeDepth.Set(float64(stats.TreeDepth))

	if stats.NonFinite > 0 {
		metrics.LayoutNonFinite.Add(float64(stats.NonFinite))
		ids := make([]string, len(stats.NonFiniteIDs))
		for i, id := range stats.NonFiniteIDs {
			ids[i] = string(id)
		}
		logger.FromContext(ctx).Warn("non-finite coordinates held at previous position",
			"component", "animation", "count", stats.NonFinite)
		errorreporting.CaptureNonFinite(n, stats.NonFinite, ids)
	}

	c.log.Debug("layout tick",
		"tick", n,
		"dt_sec", dtSec,
		"nodes", stats.Nodes,
		"moved", len(next),
		"regions", stats.Regions,
		"duration", elapsed)

	if c.onTick != nil {
		c.onTick(TickResult{Tick: n, DtSec: dtSec, Positions: next, Stats: stats, Duration: elapsed})
	}
}
