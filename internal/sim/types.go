package sim

import (
	"log/slog"
	"sort"
	"time"

	"github.com/san-kum/wcsph/internal/sph"
	"gonum.org/v1/gonum/spatial/r2"
)

// Frame describes one completed batch of substeps.
type Frame struct {
	Index      int
	Time       float64
	Collisions int
	Points     []r2.Vec // display-space positions; nil unless recorded
}

// Sample is what metrics and observers see after each frame. Particles is
// the live store and must not be retained or modified.
type Sample struct {
	Frame
	Particles *sph.Particles
	Params    sph.Params
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Current() float64 // value for the most recent frame
	Value() float64   // summary over the run
	Reset()
}

type Observer interface {
	OnFrame(s Sample)
}

type Config struct {
	Frames        int // Run requires > 0; 0 makes RunWithCallback unbounded
	RecordEvery   int // keep every k-th frame's points; 0 keeps none
	ValidateState bool
}

type Result struct {
	Seed      int64
	Frames    []Frame
	Metrics   map[string]float64
	Series    map[string][]float64
	FramesRun int
	Time      float64
	Elapsed   time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (r *Result) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("seed", r.Seed),
		slog.Int("frames", r.FramesRun),
		slog.Float64("sim_time", r.Time),
		slog.Duration("elapsed", r.Elapsed),
	}
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		attrs = append(attrs, slog.Float64(name, r.Metrics[name]))
	}
	return slog.GroupValue(attrs...)
}
