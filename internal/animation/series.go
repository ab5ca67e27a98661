package animation

import (
	"sync/atomic"

	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/metrics"
)

// DefaultMaxTimeDeltaSec is the largest frame delta passed through
// unchanged.
const DefaultMaxTimeDeltaSec = 0.1

// Series drives a callback once per frame with the elapsed time since the
// previous frame. The first frame only records a baseline. A delta larger
// than the configured maximum, or a negative one, is replaced by 0 so a
// stalled host does not produce one huge step.
type Series struct {
	scheduler FrameScheduler
	maxDelta  float64
	callback  func(dtSec float64)

	previous    float64
	hasPrevious bool

	started atomic.Bool
	stopped atomic.Bool
	clamped atomic.Uint64
}

// NewSeries creates a stopped series. maxTimeDeltaSec <= 0 selects
// DefaultMaxTimeDeltaSec.
func NewSeries(scheduler FrameScheduler, maxTimeDeltaSec float64, callback func(dtSec float64)) *Series {
	if !(maxTimeDeltaSec > 0) {
		maxTimeDeltaSec = DefaultMaxTimeDeltaSec
	}
	return &Series{scheduler: scheduler, maxDelta: maxTimeDeltaSec, callback: callback}
}

// Start requests the first frame. Calling it again has no effect.
func (s *Series) Start() {
	if s.stopped.Load() || !s.started.CompareAndSwap(false, true) {
		return
	}
	s.scheduler.RequestFrame(s.frame)
}

// Stop prevents any further callback and frame request. A frame already
// being delivered finishes, but does not reschedule.
func (s *Series) Stop() { s.stopped.Store(true) }

// Stopped reports whether Stop was called.
func (s *Series) Stopped() bool { return s.stopped.Load() }

// Clamped is the number of frames whose delta was replaced by 0.
func (s *Series) Clamped() uint64 { return s.clamped.Load() }

func (s *Series) frame(timestampMs float64) {
	if s.stopped.Load() {
		return
	}
	if s.hasPrevious {
		dt := (timestampMs - s.previous) / 1000
		if dt > s.maxDelta || dt < 0 {
			logger.Debug("frame delta clamped", "component", "animation", "dt_sec", dt, "max_sec", s.maxDelta)
			s.clamped.Add(1)
			metrics.LayoutClampedFrames.Inc()
			dt = 0
		}
		s.callback(dt)
	}
	s.previous = timestampMs
	s.hasPrevious = true

	if !s.stopped.Load() {
		s.scheduler.RequestFrame(s.frame)
	}
}
