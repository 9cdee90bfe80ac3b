package sph

import "gonum.org/v1/gonum/spatial/r2"

// Initialize scatters particles uniformly over the domain and sets every
// density to the reference density. Velocity, pressure and gradients are
// zeroed.
func Initialize(p *Particles, prm Params, src Source) {
	for i := range p.Pos {
		x := r2.Vec{X: src.Float64() * prm.Width, Y: src.Float64() * prm.Height}
		p.Pos[i] = x
		p.Display[i] = prm.toDisplay(x)
		p.Vel[i] = r2.Vec{}
		p.Density[i] = prm.Rho0
		p.Pressure[i] = 0
		p.PressureGrad[i] = r2.Vec{}
		p.KernelGrad[i] = r2.Vec{}
	}
}
