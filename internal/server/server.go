package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/onnwee/forcegraph/internal/animation"
	"github.com/onnwee/forcegraph/internal/api"
	"github.com/onnwee/forcegraph/internal/api/handlers"
	"github.com/onnwee/forcegraph/internal/cache"
	"github.com/onnwee/forcegraph/internal/config"
	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/metrics"
	"github.com/onnwee/forcegraph/internal/middleware"
)

const (
	metricsInterval = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server runs the layout loop against an in-memory graph and serves it
// over HTTP and websocket.
type Server struct {
	Store  *graph.Store
	Hub    *handlers.Hub
	Layout *animation.Configurator

	cfg       *config.Config
	cache     *cache.LRUCache
	scheduler *animation.TickerScheduler
	collector *metrics.Collector
	limiter   *middleware.RateLimiter
	http      *http.Server
}

// New builds the server from cfg, loading cfg.GraphFile when set. The
// layout is configured but no frame is delivered until Serve runs.
func New(cfg *config.Config) (*Server, error) {
	store := graph.NewStore()
	if cfg.GraphFile != "" {
		doc, err := graph.LoadFile(cfg.GraphFile)
		if err != nil {
			return nil, fmt.Errorf("load graph file: %w", err)
		}
		if err := store.Load(doc); err != nil {
			return nil, fmt.Errorf("load graph file: %w", err)
		}
		stats := store.Stats()
		logger.Info("Loaded graph file", "path", cfg.GraphFile, "nodes", stats.Nodes, "edges", stats.Edges)
	}

	snapshots, err := cache.NewLRU(cfg.CacheMaxSizeMB, cfg.CacheMaxEntries, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	hub := handlers.NewHub(store)
	scheduler := animation.NewTickerScheduler(cfg.FrameInterval)

	static := make([]layout.NodeID, len(cfg.StaticNodes))
	for i, id := range cfg.StaticNodes {
		static[i] = layout.NodeID(id)
	}
	configurator, err := animation.Configure(store, scheduler, animation.Options{
		Params:          cfg.LayoutParams(),
		MaxTimeDeltaSec: cfg.MaxTimeDeltaSec(),
		Seed:            cfg.Seed,
		StaticNodeIDs:   static,
		Logger:          logger.WithComponent("layout"),
		OnTick: func(res animation.TickResult) {
			// Static and dragged nodes are not in res.Positions.
			if hub.ClientCount() > 0 {
				hub.BroadcastPositions(res.Tick, store.Positions())
			}
		},
	})
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	var limiter *middleware.RateLimiter
	if cfg.EnableRateLimit {
		limiter = middleware.NewRateLimiter(cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst, cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst)
	}

	router := api.NewRouter(api.Deps{
		Store:         store,
		Cache:         snapshots,
		CacheTTL:      cfg.CacheTTL,
		Hub:           hub,
		Layout:        configurator,
		MaxTimeDelta:  cfg.MaxTimeDelta,
		FrameInterval: cfg.FrameInterval,
	})

	return &Server{
		Store:     store,
		Hub:       hub,
		Layout:    configurator,
		cfg:       cfg,
		cache:     snapshots,
		scheduler: scheduler,
		collector: metrics.NewCollector(store, snapshots, metricsInterval),
		limiter:   limiter,
		http: &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: api.Handler(router, api.ChainOptions{
				CORSOrigins: cfg.CORSAllowedOrigins,
				RateLimiter: limiter,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run listens on cfg.HTTPAddr and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTPAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve starts the frame loop, the stream hub and the metrics collector,
// then serves HTTP on ln. When ctx is done it shuts everything down and
// returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.close()

	go s.scheduler.Run(ctx)
	go s.Hub.Run(ctx)
	go s.collector.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) close() {
	s.Layout.Stop()
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.cache.Close()
}
