package sph

import "gonum.org/v1/gonum/spatial/r2"

// ComputeDensity adds Σⱼ m·W(|xᵢ−xⱼ|, h) to each particle's density.
// It does not clear the field first; callers reset it with
// [Particles.ResetDensity].
func ComputeDensity(p *Particles, prm Params, workers int) {
	n := p.Len()
	parallelFor(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			xi := p.Pos[i]
			rho := p.Density[i]
			for j := 0; j < n; j++ {
				rho += prm.Mass * Kernel(r2.Norm(r2.Sub(xi, p.Pos[j])), prm.H)
			}
			p.Density[i] = rho
		}
	})
}
