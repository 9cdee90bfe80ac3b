package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particles is the particle state store. Fields are parallel slices
// indexed by particle; the length never changes after construction.
type Particles struct {
	Pos          []r2.Vec
	Display      []r2.Vec // Pos normalized to the unit square, for renderers only
	Vel          []r2.Vec
	Density      []float64
	Pressure     []float64
	PressureGrad []r2.Vec
	KernelGrad   []r2.Vec // Σⱼ ∇ᵢWᵢⱼ from the last pressure pass
}

func NewParticles(n int) *Particles {
	return &Particles{
		Pos:          make([]r2.Vec, n),
		Display:      make([]r2.Vec, n),
		Vel:          make([]r2.Vec, n),
		Density:      make([]float64, n),
		Pressure:     make([]float64, n),
		PressureGrad: make([]r2.Vec, n),
		KernelGrad:   make([]r2.Vec, n),
	}
}

func (p *Particles) Len() int { return len(p.Pos) }

// ResetDensity zeroes the density field before an accumulation pass.
func (p *Particles) ResetDensity() {
	for i := range p.Density {
		p.Density[i] = 0
	}
}

// DisplayPoints copies the display buffer into dst, growing it if needed.
func (p *Particles) DisplayPoints(dst []r2.Vec) []r2.Vec {
	if cap(dst) < len(p.Display) {
		dst = make([]r2.Vec, len(p.Display))
	}
	dst = dst[:len(p.Display)]
	copy(dst, p.Display)
	return dst
}

// Valid reports whether every position and velocity is finite.
func (p *Particles) Valid() bool {
	for i := range p.Pos {
		if !finite(p.Pos[i]) || !finite(p.Vel[i]) {
			return false
		}
	}
	return true
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
