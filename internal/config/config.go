package config

import (
	"os"
	"strings"
	"time"

	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Layout physics
	NodeMass              float64
	NodeCharge            float64
	RepulsionCoefficient  float64
	MaxForce              float64
	EdgeEquilibriumLength float64
	EdgeStiffness         float64
	EffectiveDistance     float64 // Barnes-Hut θ
	MinRegionSize         float64
	// Frame clock
	MaxTimeDelta  time.Duration
	FrameInterval time.Duration
	Seed          uint64
	StaticNodes   []string // node ids never moved by the simulation
	// Graph file loaded at startup, optional
	GraphFile string
	// HTTP server
	HTTPAddr             string
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool     // enable rate limiting middleware
	// Snapshot cache
	CacheMaxSizeMB  int64
	CacheMaxEntries int64
	CacheTTL        time.Duration
	// Observability settings
	LogLevel          string  // log level: debug, info, warn, error
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
	ServiceVersion    string
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	def := layout.DefaultParams()
	cached = &Config{
		NodeMass:              utils.GetEnvAsFloat("LAYOUT_NODE_MASS", def.NodeMass),
		NodeCharge:            utils.GetEnvAsFloat("LAYOUT_NODE_CHARGE", def.NodeCharge),
		RepulsionCoefficient:  utils.GetEnvAsFloat("LAYOUT_REPULSION_COEFFICIENT", def.RepulsionCoefficient),
		MaxForce:              utils.GetEnvAsFloat("LAYOUT_MAX_FORCE", def.MaxForce),
		EdgeEquilibriumLength: utils.GetEnvAsFloat("LAYOUT_EDGE_LENGTH", def.EdgeEquilibriumLength),
		EdgeStiffness:         utils.GetEnvAsFloat("LAYOUT_EDGE_STIFFNESS", def.EdgeStiffness),
		EffectiveDistance:     utils.GetEnvAsFloat("LAYOUT_EFFECTIVE_DISTANCE", def.EffectiveDistance),
		MinRegionSize:         utils.GetEnvAsFloat("LAYOUT_MIN_REGION_SIZE", def.MinRegionSize),
		MaxTimeDelta:          utils.GetEnvAsMillis("LAYOUT_MAX_TIME_DELTA_MS", 100*time.Millisecond),
		FrameInterval:         utils.GetEnvAsMillis("LAYOUT_FRAME_INTERVAL_MS", 16*time.Millisecond),
		Seed:                  utils.GetEnvAsUint64("LAYOUT_SEED", 1),
		StaticNodes:           utils.GetEnvAsSlice("LAYOUT_STATIC_NODES", nil, ","),
		GraphFile:             strings.TrimSpace(os.Getenv("GRAPH_FILE")),
		HTTPAddr:              strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		// Security settings with sensible defaults
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),
		CORSAllowedOrigins: utils.GetEnvAsSlice("CORS_ALLOWED_ORIGINS",
			[]string{"http://localhost:5173", "http://localhost:3000"}, ","),
		CacheMaxSizeMB:  int64(utils.GetEnvAsInt("CACHE_MAX_SIZE_MB", 16)),
		CacheMaxEntries: int64(utils.GetEnvAsInt("CACHE_MAX_ENTRIES", 256)),
		CacheTTL:        utils.GetEnvAsMillis("CACHE_TTL_MS", time.Second),
		// Observability settings
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
		ServiceVersion:    strings.TrimSpace(os.Getenv("SERVICE_VERSION")),
	}
	if cached.HTTPAddr == "" {
		cached.HTTPAddr = ":8000"
	}
	if cached.LogLevel == "" {
		cached.LogLevel = "info"
	}
	if cached.OTELEndpoint == "" {
		cached.OTELEndpoint = "localhost:4318"
	}
	if cached.ServiceVersion == "" {
		cached.ServiceVersion = "dev"
	}
	if cached.SentryRelease == "" {
		cached.SentryRelease = cached.ServiceVersion
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}
	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }

// LayoutParams returns the physics constants for the simulation.
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{
		NodeMass:              c.NodeMass,
		NodeCharge:            c.NodeCharge,
		RepulsionCoefficient:  c.RepulsionCoefficient,
		MaxForce:              c.MaxForce,
		EdgeEquilibriumLength: c.EdgeEquilibriumLength,
		EdgeStiffness:         c.EdgeStiffness,
		EffectiveDistance:     c.EffectiveDistance,
		MinRegionSize:         c.MinRegionSize,
	}
}

// MaxTimeDeltaSec is MaxTimeDelta in seconds, as used by the frame clock.
func (c *Config) MaxTimeDeltaSec() float64 { return c.MaxTimeDelta.Seconds() }
