package sph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultSubsteps is the number of substeps per rendered frame.
const DefaultSubsteps = 10

// Solver owns a particle store and advances it substep by substep.
// A Solver is not safe for concurrent use; the passes it runs are
// parallelized internally.
type Solver struct {
	params    Params
	particles *Particles
	rng       Source
	workers   int
	substeps  int
	steps     int
}

type Option func(*Solver)

// WithWorkers sets how many goroutines each pass may use. Values below 1
// run every pass on the calling goroutine.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithSubsteps sets the number of substeps run by [Solver.Frame].
func WithSubsteps(n int) Option {
	return func(s *Solver) { s.substeps = n }
}

// NewSolver validates prm, allocates the particle store and places the
// particles using src.
func NewSolver(prm Params, src Source, opts ...Option) (*Solver, error) {
	if err := prm.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNilSource
	}

	s := &Solver{
		params:    prm,
		particles: NewParticles(prm.N),
		rng:       src,
		workers:   DefaultWorkers(),
		substeps:  DefaultSubsteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.substeps < 1 {
		return nil, fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidParams, s.substeps)
	}

	Initialize(s.particles, prm, src)
	return s, nil
}

// Substep runs density, pressure and integration once and returns the
// number of wall collisions.
func (s *Solver) Substep() int {
	p := s.particles
	p.ResetDensity()
	ComputeDensity(p, s.params, s.workers)
	ComputePressure(p, s.params, s.workers)
	forcing := DrawForcing(s.rng, s.params.ForcingScale)
	hits := Integrate(p, s.params, forcing, s.workers)
	s.steps++
	return hits
}

// Frame runs the configured number of substeps and returns the total
// number of wall collisions.
func (s *Solver) Frame() int {
	hits := 0
	for i := 0; i < s.substeps; i++ {
		hits += s.Substep()
	}
	return hits
}

// Reset scatters the particles again and rewinds the clock.
func (s *Solver) Reset() {
	Initialize(s.particles, s.params, s.rng)
	s.steps = 0
}

func (s *Solver) Particles() *Particles { return s.particles }
func (s *Solver) Params() Params        { return s.params }
func (s *Solver) Substeps() int         { return s.substeps }
func (s *Solver) Steps() int            { return s.steps }

// Time is the simulated time elapsed since the last reset.
func (s *Solver) Time() float64 {
	return float64(s.steps) * s.params.Dt
}

// Display copies the current display buffer into dst.
func (s *Solver) Display(dst []r2.Vec) []r2.Vec {
	return s.particles.DisplayPoints(dst)
}
