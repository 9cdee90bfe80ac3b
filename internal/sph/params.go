package sph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Params holds the physical constants of a run. A Params value is never
// mutated by the solver.
type Params struct {
	N             int     // particle count
	Width, Height float64 // domain size; Height only scales display output
	Dt            float64
	Mass          float64
	H             float64 // kernel support radius
	Rho0          float64 // reference density
	Stiffness     float64 // B in P = B((ρ/ρ0)^γ − 1)
	Gamma         float64 // polytropic exponent
	Gravity       r2.Vec
	Epsilon       float64 // boundary clamp offset
	Damping       r2.Vec  // velocity multiplier applied on any wall hit
	ForcingScale  float64 // scale of the shared per-substep random forcing
	DensityFloor  float64 // lower bound on density in pressure-force divisions
}

// DefaultDensityFloor only guards the divisions against ρ = 0. Any
// particle with a neighbour inside the support sits well above it.
const DefaultDensityFloor = 1e-9

// DefaultParams returns the reference setup: 100 particles in a 40×20
// domain with water-like stiffness.
func DefaultParams() Params {
	return Params{
		N:            100,
		Width:        40,
		Height:       20,
		Dt:           0.005,
		Mass:         1.0,
		H:            1.0,
		Rho0:         1000.0,
		Stiffness:    1119,
		Gamma:        7,
		Gravity:      r2.Vec{X: 0, Y: -9.8},
		Epsilon:      1e-4,
		Damping:      r2.Vec{X: -0.8, Y: -0.8},
		ForcingScale: 1.0,
		DensityFloor: DefaultDensityFloor,
	}
}

// Validate reports the first parameter that would make the solver produce
// NaN or meaningless output.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"width": p.Width, "height": p.Height, "dt": p.Dt, "mass": p.Mass,
		"support radius": p.H, "reference density": p.Rho0,
		"stiffness": p.Stiffness, "gamma": p.Gamma,
		"gravity.x": p.Gravity.X, "gravity.y": p.Gravity.Y,
		"epsilon": p.Epsilon, "damping.x": p.Damping.X, "damping.y": p.Damping.Y,
		"forcing scale": p.ForcingScale, "density floor": p.DensityFloor,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}

	switch {
	case p.N <= 0:
		return fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidParams, p.N)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: domain must have positive size, got %gx%g", ErrInvalidParams, p.Width, p.Height)
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidParams, p.Mass)
	case p.H <= 0:
		return fmt.Errorf("%w: support radius must be positive, got %g", ErrInvalidParams, p.H)
	case p.Rho0 <= 0:
		return fmt.Errorf("%w: reference density must be positive, got %g", ErrInvalidParams, p.Rho0)
	case p.Stiffness < 0:
		return fmt.Errorf("%w: stiffness must not be negative, got %g", ErrInvalidParams, p.Stiffness)
	case p.Gamma <= 0:
		return fmt.Errorf("%w: gamma must be positive, got %g", ErrInvalidParams, p.Gamma)
	case p.Epsilon < 0 || p.Epsilon >= p.Width:
		return fmt.Errorf("%w: epsilon must be in [0, width), got %g", ErrInvalidParams, p.Epsilon)
	case p.ForcingScale < 0:
		return fmt.Errorf("%w: forcing scale must not be negative, got %g", ErrInvalidParams, p.ForcingScale)
	case p.DensityFloor <= 0:
		return fmt.Errorf("%w: density floor must be positive, got %g", ErrInvalidParams, p.DensityFloor)
	}
	return nil
}

func (p Params) flooredDensity(rho float64) float64 {
	if rho < p.DensityFloor {
		return p.DensityFloor
	}
	return rho
}

// confine applies the wall rules to x. There is no ceiling.
func (p Params) confine(x r2.Vec) (r2.Vec, bool) {
	hit := false
	if x.Y < -p.Epsilon {
		x.Y = p.Epsilon
		hit = true
	}
	if x.X < -p.Epsilon {
		x.X = p.Epsilon
		hit = true
	}
	if x.X > p.Width {
		x.X = p.Width - p.Epsilon
		hit = true
	}
	return x, hit
}

func (p Params) toDisplay(x r2.Vec) r2.Vec {
	return r2.Vec{X: x.X / p.Width, Y: x.Y / p.Height}
}
