package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EquationOfState is the Tait relation P = B((ρ/ρ0)^γ − 1). It is not
// clamped: densities below ρ0 give negative pressure.
func EquationOfState(rho float64, prm Params) float64 {
	return prm.Stiffness * (math.Pow(rho/prm.Rho0, prm.Gamma) - 1)
}

// ComputePressure fills Pressure from Density, then PressureGrad with the
// symmetric estimate
//
//	∇Pᵢ = ρᵢ Σⱼ m (Pᵢ/ρᵢ² + Pⱼ/ρⱼ²) ∇ᵢWᵢⱼ
//
// Densities in the divisions are floored at prm.DensityFloor. A particle
// with no neighbours inside the support gets a zero gradient.
func ComputePressure(p *Particles, prm Params, workers int) {
	n := p.Len()

	parallelFor(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			p.Pressure[i] = EquationOfState(p.Density[i], prm)
		}
	})

	parallelFor(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			rhoI := prm.flooredDensity(p.Density[i])
			ci := p.Pressure[i] / (rhoI * rhoI)
			xi := p.Pos[i]

			var term, grad r2.Vec
			for j := 0; j < n; j++ {
				gw := KernelGradient(r2.Sub(xi, p.Pos[j]), prm.H)
				if gw == (r2.Vec{}) {
					continue
				}
				rhoJ := prm.flooredDensity(p.Density[j])
				cj := p.Pressure[j] / (rhoJ * rhoJ)
				term = r2.Add(term, r2.Scale(prm.Mass*(ci+cj), gw))
				grad = r2.Add(grad, gw)
			}

			p.PressureGrad[i] = r2.Scale(rhoI, term)
			p.KernelGrad[i] = grad
		}
	})
}
