package metrics

import (
	"context"
	"time"

	"github.com/onnwee/forcegraph/internal/cache"
)

// GraphCounter reports the current size of the graph store.
type GraphCounter interface {
	Counts() (nodes, edges, dragging int)
}

// Collector periodically samples gauges that are not updated inline.
type Collector struct {
	graph    GraphCounter
	cache    cache.Cache
	interval time.Duration
	stop     chan struct{}
}

// NewCollector creates a new metrics collector. Either source may be nil.
func NewCollector(graph GraphCounter, c cache.Cache, interval time.Duration) *Collector {
	return &Collector{
		graph:    graph,
		cache:    c,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect()

	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stop)
}

// Collect samples every source once.
func (c *Collector) Collect() {
	if c.graph != nil {
		nodes, edges, dragging := c.graph.Counts()
		GraphNodesTotal.Set(float64(nodes))
		GraphEdgesTotal.Set(float64(edges))
		GraphDraggingNodes.Set(float64(dragging))
	}
	if c.cache != nil {
		stats := c.cache.Stats()
		if stats.Size < 0 || stats.Items < 0 {
			MetricsCollectionErrors.WithLabelValues("cache").Inc()
			return
		}
		CacheSize.Set(float64(stats.Size))
		CacheItems.Set(float64(stats.Items))
	}
}
