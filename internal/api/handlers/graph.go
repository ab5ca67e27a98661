package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"

	"github.com/onnwee/forcegraph/internal/apierr"
	"github.com/onnwee/forcegraph/internal/cache"
	"github.com/onnwee/forcegraph/internal/errorreporting"
	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/metrics"
)

// GraphSource exports the graph together with the version it reflects.
type GraphSource interface {
	ExportVersion() (*graph.Document, uint64)
}

// GraphResponse is the body of GET /api/graph and of the stream's initial
// message.
type GraphResponse struct {
	Version uint64 `json:"version"`
	*graph.Document
}

// Notifier is told about structural graph changes.
type Notifier interface {
	BroadcastGraphChanged(version uint64)
}

// Handler handles HTTP requests for the graph API.
type Handler struct {
	store    *graph.Store
	cache    cache.Cache
	cacheTTL time.Duration
	notify   Notifier
}

// NewHandler creates a graph handler. c and notify may be nil.
func NewHandler(store *graph.Store, c cache.Cache, cacheTTL time.Duration, notify Notifier) *Handler {
	return &Handler{store: store, cache: c, cacheTTL: cacheTTL, notify: notify}
}

var validate = newValidator()

// newValidator reports json field names in validation details.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GetGraph returns the graph with current positions. Encoded responses are
// cached per store version.
// GET /api/graph
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if data, ok := h.cache.Get(cache.SnapshotKey(h.store.Version())); ok {
			metrics.CacheHits.Inc()
			writeRawJSON(w, http.StatusOK, data)
			return
		}
		metrics.CacheMisses.Inc()
	}

	doc, version := h.store.ExportVersion()
	data, err := json.Marshal(GraphResponse{Version: version, Document: doc})
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("Failed to encode graph"))
		return
	}
	if h.cache != nil {
		h.cache.Set(cache.SnapshotKey(version), data, h.cacheTTL)
	}
	writeRawJSON(w, http.StatusOK, data)
}

// changed notifies stream clients after a structural mutation.
func (h *Handler) changed() {
	version := h.store.Version()
	errorreporting.AddBreadcrumb("graph", "graph changed to version "+strconv.FormatUint(version, 10), sentry.LevelInfo)
	if h.notify != nil {
		h.notify.BroadcastGraphChanged(version)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeRequest reads a JSON body into dst and validates it.
func decodeRequest(r *http.Request, dst interface{}) *apierr.Error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierr.New(apierr.ErrValidationInvalidValue, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		logger.FromContext(r.Context()).Debug("invalid request body", "error", err)
		return apierr.ValidationInvalidJSON()
	}
	if err := validate.Struct(dst); err != nil {
		return apierr.FromValidation(err)
	}
	return nil
}
