package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/forcegraph/internal/api/handlers"
	"github.com/onnwee/forcegraph/internal/cache"
	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/middleware"
)

// Deps are the components served over HTTP. Cache, Hub and Layout may be
// nil; the matching routes are then served uncached or not registered.
type Deps struct {
	Store    *graph.Store
	Cache    cache.Cache
	CacheTTL time.Duration
	Hub      *handlers.Hub
	Layout   handlers.LayoutInfo

	MaxTimeDelta  time.Duration
	FrameInterval time.Duration
}

// ChainOptions configures the middleware wrapped around the router.
type ChainOptions struct {
	CORSOrigins []string
	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter *middleware.RateLimiter
}

func NewRouter(d Deps) *mux.Router {
	var notify handlers.Notifier
	if d.Hub != nil {
		notify = d.Hub
	}
	h := handlers.NewHandler(d.Store, d.Cache, d.CacheTTL, notify)

	r := mux.NewRouter()

	// Health and metrics
	r.Handle("/health", instrument("/health", handlers.Health(d.Store))).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Graph
	api.Handle("/graph", instrument("/api/graph", cached(http.HandlerFunc(h.GetGraph)))).Methods("GET")

	// Layout
	if d.Layout != nil {
		api.Handle("/layout/config", instrument("/api/layout/config",
			cached(handlers.LayoutConfig(d.Layout, d.MaxTimeDelta, d.FrameInterval)))).Methods("GET")
	}

	// Nodes
	api.Handle("/nodes", instrument("/api/nodes", http.HandlerFunc(h.CreateNode))).Methods("POST")
	api.Handle("/nodes/{id}", instrument("/api/nodes/{id}", http.HandlerFunc(h.DeleteNode))).Methods("DELETE")
	api.Handle("/nodes/{id}/drag", instrument("/api/nodes/{id}/drag", http.HandlerFunc(h.DragNode))).Methods("PUT")
	api.Handle("/nodes/{id}/drag", instrument("/api/nodes/{id}/drag", http.HandlerFunc(h.MoveDrag))).Methods("PATCH")
	api.Handle("/nodes/{id}/drag", instrument("/api/nodes/{id}/drag", http.HandlerFunc(h.EndDrag))).Methods("DELETE")

	// Edges
	api.Handle("/edges", instrument("/api/edges", http.HandlerFunc(h.CreateEdge))).Methods("POST")
	api.Handle("/edges", instrument("/api/edges", http.HandlerFunc(h.DeleteEdge))).Methods("DELETE")

	// Position stream; not instrumented since the connection is hijacked
	if d.Hub != nil {
		api.HandleFunc("/stream", d.Hub.ServeWS).Methods("GET")
	}

	return r
}

// cached adds revalidation and compression to read endpoints.
func cached(next http.Handler) http.Handler {
	return middleware.Compress(middleware.ETag(next))
}

// Handler wraps the router in the middleware chain, outermost first:
// request id, panic recovery, security headers, CORS, rate limiting and
// request body checks.
func Handler(router http.Handler, opts ChainOptions) http.Handler {
	h := middleware.ValidateRequestBody(router)
	if opts.RateLimiter != nil {
		h = opts.RateLimiter.Limit(h)
	}
	h = middleware.CORS(middleware.DefaultCORSConfig(opts.CORSOrigins...))(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.RecoverWithSentry(h)
	return middleware.RequestID(h)
}
