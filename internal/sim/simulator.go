package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/wcsph/internal/sph"
)

type Simulator struct {
	solver    *sph.Solver
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

func New(solver *sph.Solver) *Simulator {
	return &Simulator{
		solver:    solver,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Solver() *sph.Solver    { return s.solver }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run advances cfg.Frames frames. On cancellation or instability it
// returns the partial result together with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Frames == 0 {
		return nil, fmt.Errorf("%w: frames must be positive for a batch run", ErrInvalidConfig)
	}

	result := &Result{
		Frames:  make([]Frame, 0, recordedFrames(cfg)),
		Metrics: make(map[string]float64),
		Series:  make(map[string][]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, cfg.Frames)
	}

	prm := s.solver.Params()
	s.logger.Info("run started", "particles", prm.N, "frames", cfg.Frames, "substeps", s.solver.Substeps(), "dt", prm.Dt)
	start := time.Now()

	var runErr error
	for i := 0; i < cfg.Frames; i++ {
		f, err := s.step(ctx, cfg, i)
		if err != nil {
			runErr = err
			break
		}

		if cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0 {
			f.Points = s.solver.Display(nil)
			result.Frames = append(result.Frames, f)
		}
		for _, m := range s.metrics {
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Current())
		}
		result.FramesRun++
	}

	result.Time = s.solver.Time()
	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Warn("run stopped", "error", runErr, "result", result)
		return result, runErr
	}
	s.logger.Info("run finished", "result", result)
	return result, nil
}

// RunWithCallback streams frames to fn, with display points always
// attached, until fn returns false, cfg.Frames frames have run (when
// positive), or ctx is done. The points slice is reused between calls.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	points := s.solver.Display(nil)
	for i := 0; cfg.Frames == 0 || i < cfg.Frames; i++ {
		f, err := s.step(ctx, cfg, i)
		if err != nil {
			return err
		}
		points = s.solver.Display(points)
		f.Points = points
		if !fn(f) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) step(ctx context.Context, cfg Config, idx int) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	default:
	}

	hits := s.solver.Frame()
	p := s.solver.Particles()
	f := Frame{Index: idx, Time: s.solver.Time(), Collisions: hits}

	if cfg.ValidateState && !p.Valid() {
		return f, &SimulationError{Frame: idx, Time: f.Time, Wrapped: ErrUnstable}
	}

	sample := Sample{Frame: f, Particles: p, Params: s.solver.Params()}
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnFrame(sample)
	}
	return f, nil
}

func validateConfig(cfg Config) error {
	if cfg.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalidConfig, cfg.Frames)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must not be negative, got %d", ErrInvalidConfig, cfg.RecordEvery)
	}
	return nil
}

func recordedFrames(cfg Config) int {
	if cfg.RecordEvery <= 0 {
		return 0
	}
	return (cfg.Frames + cfg.RecordEvery - 1) / cfg.RecordEvery
}
