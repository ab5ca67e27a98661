package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Layout engine metrics
	LayoutTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layout_ticks_total",
			Help: "Total number of layout simulation ticks",
		},
	)

	LayoutTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "layout_tick_duration_seconds",
			Help:    "Wall time spent computing one layout tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.004, 0.008, 0.016, 0.033, 0.1},
		},
	)

	LayoutTickPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layout_tick_panics_total",
			Help: "Total number of recovered panics inside a layout tick",
		},
	)

	LayoutNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "layout_nodes",
			Help: "Nodes in the most recent layout tick",
		},
	)

	LayoutStaticNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "layout_static_nodes",
			Help: "Pinned or dragged nodes excluded from the most recent tick",
		},
	)

	LayoutQuadTreeRegions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "layout_quadtree_regions",
			Help: "Regions in the quad-tree built for the most recent tick",
		},
	)

	LayoutQuadTreeDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "layout_quadtree_depth",
			Help: "Depth of the quad-tree built for the most recent tick",
		},
	)

	LayoutClampedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layout_clamped_frames_total",
			Help: "Frames whose time delta exceeded the maximum and was replaced by zero",
		},
	)

	LayoutNonFinite = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layout_non_finite_total",
			Help: "Node updates that produced NaN or Inf and were discarded",
		},
	)

	// Graph store metrics
	GraphNodesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_nodes_total",
			Help: "Current number of nodes in the graph store",
		},
	)

	GraphEdgesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_edges_total",
			Help: "Current number of edges in the graph store",
		},
	)

	GraphDraggingNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_dragging_nodes",
			Help: "Nodes currently held by a drag",
		},
	)

	// Snapshot cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_cache_size_bytes",
			Help: "Approximate size of the snapshot cache in bytes",
		},
	)

	CacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_cache_items",
			Help: "Number of items in the snapshot cache",
		},
	)

	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"route", "method"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	APIRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active position stream connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of position frames queued to clients",
		},
	)

	WebSocketDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_clients_dropped_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)

	MetricsCollectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_collection_errors_total",
			Help: "Errors encountered while sampling metrics",
		},
		[]string{"source"},
	)
)
